package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	app "github.com/kode4food/feedlink"
	"github.com/kode4food/feedlink/internal/archive"
	"github.com/kode4food/feedlink/internal/client"
	"github.com/kode4food/feedlink/internal/config"
	"github.com/kode4food/feedlink/internal/server"
	"github.com/kode4food/feedlink/internal/wizard"
	"github.com/kode4food/feedlink/pkg/log"
)

type feedlink struct {
	cfg        *config.Config
	archive    *archive.Writer
	wizard     *wizard.Wizard
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
}

var ErrOpenArchive = errors.New("failed to open transcript archive")

func main() {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &feedlink{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *feedlink) run() error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	if err := s.initializeArchive(); err != nil {
		return err
	}

	s.initializeWizard()
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *feedlink) setupLogging() {
	level := log.ParseLevel(s.cfg.LogLevel)

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Feedlink starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("provider_base_url", s.cfg.Provider.BaseURL),
		slog.String("provider_api_version", s.cfg.Provider.APIVersion),
		slog.Int64("call_timeout_ms", s.cfg.CallTimeout),
		slog.Bool("archive_enabled", s.cfg.ArchiveBucketURL != ""),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

func (s *feedlink) initializeArchive() error {
	if s.cfg.ArchiveBucketURL == "" {
		return nil
	}

	w, err := archive.Open(
		context.Background(), s.cfg.ArchiveBucketURL, s.cfg.ArchivePrefix,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenArchive, err)
	}
	s.archive = w
	return nil
}

func (s *feedlink) initializeWizard() {
	cl := client.NewHTTPClient(
		s.cfg.Provider, s.cfg.Credentials, s.cfg.CallTimeoutDuration(),
	)
	s.wizard = wizard.New(wizard.DefaultManifest(), cl,
		wizard.WithCopyResetDelay(s.cfg.CopyResetDuration()),
	)
}

func (s *feedlink) startServer() {
	var arch server.Archiver
	if s.archive != nil {
		arch = s.archive
	}
	s.apiServer = server.NewServer(s.wizard, arch)
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *feedlink) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.apiServer.CloseWebSockets()
	s.wizard.Close()

	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			slog.Error("Archive close failed", log.Error(err))
		}
	}

	slog.Info("Server exited")
}
