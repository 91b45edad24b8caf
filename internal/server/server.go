package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campusconnect/internal/bootstrap"
	"github.com/yigit/campusconnect/internal/config"
	"github.com/yigit/campusconnect/internal/db"
)

// Server holds the state for the HTTP server.
type Server struct {
	config   *config.Config
	router   *gin.Engine
	deps     *bootstrap.Dependencies
	database *db.PostgresDB
	logger   zerolog.Logger
	http     *http.Server

	// stopHub ends the websocket hub and with it every live view
	stopHub context.CancelFunc
}

// NewServer creates and initializes a new server instance by calling bootstrap functions.
func NewServer(configPath string) (*Server, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config or setup logger: %w", err)
	}

	ctx := context.Background()
	store, database, err := bootstrap.SetupStore(ctx, cfg, lgr)
	if err != nil {
		return nil, fmt.Errorf("failed to setup store: %w", err)
	}

	deps := bootstrap.BuildDependencies(cfg, store, lgr)
	bootstrap.SeedDefaultData(ctx, cfg, deps)

	hubCtx, stopHub := context.WithCancel(context.Background())
	go deps.Hub.Run(hubCtx)

	return &Server{
		config:   cfg,
		router:   bootstrap.SetupRouter(cfg, deps),
		deps:     deps,
		database: database,
		logger:   lgr,
		stopHub:  stopHub,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown.
func (s *Server) Run() error {
	s.http = &http.Server{
		Addr:        ":" + s.config.Server.Port,
		Handler:     s.router,
		ReadTimeout: 10 * time.Second,
		// no WriteTimeout: live views hold their connection open
		IdleTimeout: 120 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info().Str("addr", s.http.Addr).Msg("HTTP server listening")
		serverErrors <- s.http.ListenAndServe()
	}()

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			s.Shutdown(context.Background()) //nolint:errcheck
			return fmt.Errorf("error starting server: %w", err)
		}
	case sig := <-osSignals:
		s.logger.Info().Str("signal", sig.String()).Msg("Received OS signal, initiating shutdown...")
	}

	return s.Shutdown(context.Background())
}

// Shutdown gracefully stops the server and closes resources.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var shutdownErr error

	// Live views are hijacked connections that http.Server.Shutdown does
	// not wait for, so the hub is stopped first.
	if s.stopHub != nil {
		s.stopHub()
	}

	if s.http != nil {
		s.logger.Info().Msg("Shutting down HTTP server...")
		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown error")
			shutdownErr = errors.Join(shutdownErr, err)
		} else {
			s.logger.Info().Msg("HTTP server gracefully stopped.")
		}
	}

	if s.deps != nil && s.deps.Store != nil {
		if err := s.deps.Store.Close(); err != nil {
			s.logger.Error().Err(err).Msg("Document store close error")
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}

	if s.database != nil {
		s.logger.Info().Msg("Closing database connection pool...")
		s.database.Close()
	}

	s.logger.Info().Msg("Server shutdown process complete.")
	return shutdownErr
}
