package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/feedlink/internal/wizard"
	"github.com/kode4food/feedlink/pkg/api"
)

const stepIDKey = "stepID"

var (
	ErrStepNotFound = errors.New("step not found")
	ErrInvokeStep   = errors.New("failed to invoke step")
)

func (s *Server) requireStep(c *gin.Context) {
	id := api.StepID(c.Param(stepIDKey))
	if !s.wizard.Manifest().Contains(id) {
		abortError(c, http.StatusNotFound,
			fmt.Errorf("%w: %s", ErrStepNotFound, id),
		)
		return
	}
	c.Set(stepIDKey, id)
	c.Next()
}

func stepID(c *gin.Context) api.StepID {
	return c.MustGet(stepIDKey).(api.StepID)
}

func (s *Server) openStep(c *gin.Context) {
	s.wizard.Open(stepID(c))
	c.JSON(http.StatusOK, s.wizard.State())
}

func (s *Server) advanceStep(c *gin.Context) {
	s.wizard.Advance(stepID(c))
	c.JSON(http.StatusOK, s.wizard.State())
}

func (s *Server) invokeStep(c *gin.Context) {
	// The call outlives a dropped connection; the client timeout bounds it
	ctx := context.WithoutCancel(c.Request.Context())
	rec, err := s.wizard.Invoke(ctx, stepID(c))
	if err != nil {
		abortError(c, stepErrorStatus(err),
			fmt.Errorf("%w: %w", ErrInvokeStep, err),
		)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) copyStep(c *gin.Context) {
	target := api.CopyTarget(c.DefaultQuery("what", "request"))
	text, err := s.wizard.Copy(stepID(c), target)
	if err != nil {
		abortError(c, stepErrorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, api.CopyResponse{
		Target: target,
		Text:   text,
	})
}

func (s *Server) renderStep(c *gin.Context) {
	req, err := s.wizard.Render(stepID(c))
	if err != nil {
		abortError(c, stepErrorStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func stepErrorStatus(err error) int {
	switch {
	case errors.Is(err, wizard.ErrCallInFlight):
		return http.StatusConflict
	case errors.Is(err, wizard.ErrNothingToCopy):
		return http.StatusNotFound
	case errors.Is(err, wizard.ErrNoCall),
		errors.Is(err, wizard.ErrInvalidCopyTarget):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
