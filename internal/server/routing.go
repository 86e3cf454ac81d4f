package server

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/feedlink/internal/wizard"
	"github.com/kode4food/feedlink/pkg/api"
	"github.com/kode4food/feedlink/pkg/log"
)

// TestRedirectURI is the vendor redirect the /api/test entry point seeds
const TestRedirectURI = "https://link.rutterapi.com/ibf_redirect" +
	"?challenge=test-challenge"

const redirectParam = "redirect_uri"

func (s *Server) handleTestRedirect(c *gin.Context) {
	q := url.Values{redirectParam: {TestRedirectURI}}
	c.Redirect(http.StatusFound, "/login?"+q.Encode())
}

func (s *Server) handleLogin(c *gin.Context) {
	uri := c.Query(redirectParam)
	if uri == "" {
		abortError(c, http.StatusBadRequest, wizard.ErrNoRedirect)
		return
	}
	s.wizard.SetRedirect(uri)
	slog.Info("Wizard entered",
		slog.String("challenge", wizard.Challenge(uri)))
	c.JSON(http.StatusOK, s.wizard.State())
}

func (s *Server) completeJSON(c *gin.Context) {
	res, ok := s.complete(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) completeRedirect(c *gin.Context) {
	res, ok := s.complete(c)
	if !ok {
		return
	}
	c.Redirect(http.StatusFound, res.CompletionURL)
}

func (s *Server) complete(c *gin.Context) (*api.CompletionResponse, bool) {
	target, err := s.wizard.Complete()
	if err != nil {
		abortError(c, http.StatusBadRequest, err)
		return nil, false
	}

	res := &api.CompletionResponse{CompletionURL: target}
	if s.archiver == nil {
		return res, true
	}

	t := s.wizard.Transcript()
	if _, err := s.archiver.Write(c.Request.Context(), t); err != nil {
		// The handoff proceeds without an archived transcript
		slog.Error("Transcript not archived",
			log.Error(err))
		return res, true
	}
	res.TranscriptID = t.ID
	return res, true
}
