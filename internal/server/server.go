package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	glog "github.com/gin-contrib/slog"
	"github.com/gin-gonic/gin"

	"github.com/kode4food/feedlink/internal/wizard"
	"github.com/kode4food/feedlink/pkg/api"
	"github.com/kode4food/feedlink/pkg/util"
)

type (
	// Server implements the HTTP API for a single wizard
	Server struct {
		wizard   *wizard.Wizard
		archiver Archiver
		sockets  util.Set[*Client]
		mu       sync.Mutex
	}

	// Archiver stores the transcript of a completed session and returns
	// the key it was stored under
	Archiver interface {
		Write(context.Context, *api.Transcript) (string, error)
	}
)

// NewServer creates a server over the wizard. The archiver is optional
func NewServer(w *wizard.Wizard, arch Archiver) *Server {
	return &Server{
		wizard:   w,
		archiver: arch,
		sockets:  util.Set[*Client]{},
	}
}

// SetupRoutes configures and returns the HTTP router with all API endpoints
func (s *Server) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(glog.SetLogger(
		glog.WithLogger(func(c *gin.Context, l *slog.Logger) *slog.Logger {
			return slog.Default()
		}),
	))

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set(
			"Access-Control-Allow-Methods", "GET, POST, OPTIONS",
		)
		c.Writer.Header().Set(
			"Access-Control-Allow-Headers", "Content-Type, Authorization",
		)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.GET("/health", s.handleHealth)

	// Routing boundary
	router.GET("/api/test", s.handleTestRedirect)
	router.GET("/login", s.handleLogin)

	wiz := router.Group("/wizard")
	{
		wiz.GET("", s.handleState)
		wiz.GET("/", s.handleState)

		step := wiz.Group("/step/:stepID", s.requireStep)
		{
			step.POST("/open", s.openStep)
			step.POST("/advance", s.advanceStep)
			step.POST("/invoke", s.invokeStep)
			step.POST("/copy", s.copyStep)
			step.GET("/request", s.renderStep)
		}

		wiz.POST("/complete", s.completeJSON)
		wiz.GET("/complete", s.completeRedirect)

		wiz.GET("/ws", s.handleWebSocket)
	}

	return router
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.wizard.State())
}

func (s *Server) registerWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Add(c)
}

func (s *Server) unregisterWebSocket(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets.Remove(c)
}

// CloseWebSockets closes all active WebSocket connections
func (s *Server) CloseWebSockets() {
	s.mu.Lock()
	conns := s.sockets.Values()
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

func abortError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, api.ErrorResponse{
		Error:  err.Error(),
		Status: status,
	})
}
