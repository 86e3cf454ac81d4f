package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/feedlink"
	"github.com/kode4food/feedlink/pkg/api"
)

const healthStatusOK = "healthy"

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, api.HealthResponse{
		Service: feedlink.Name,
		Version: feedlink.Version,
		Status:  healthStatusOK,
	})
}
