package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"formation-hq/timeline/pkg/config"
	"formation-hq/timeline/pkg/server/middleware"
	"formation-hq/timeline/pkg/telemetry/health"
	"formation-hq/timeline/pkg/telemetry/metrics"
	"formation-hq/timeline/pkg/timeline/preset"
	"formation-hq/timeline/pkg/timeline/reconcile"
	"formation-hq/timeline/pkg/timeline/storage"
)

// PresetSource returns the preset library in effect. *preset.Watcher
// satisfies it.
type PresetSource interface {
	Current() *preset.Library
}

// StaticPresets is a PresetSource that never changes.
type StaticPresets struct {
	Library *preset.Library
}

// Current returns the wrapped library.
func (s StaticPresets) Current() *preset.Library {
	return s.Library
}

// Deps are the collaborators the API serves.
type Deps struct {
	// Store is required.
	Store storage.Backend

	// Reconciler applies desired lists. Nil builds one over Store with
	// default settings.
	Reconciler *reconcile.Reconciler

	// Presets defaults to the built-in library.
	Presets PresetSource

	// Metrics is optional. When set and enabled, the collector records
	// requests and is served at MetricsPath.
	Metrics     *metrics.Collector
	MetricsPath string

	// Health is optional; a checker with a store check is created if nil.
	Health *health.Checker

	Logger *slog.Logger

	Version   string
	Commit    string
	BuildTime string
}

// Server is the HTTP API server.
type Server struct {
	config     *config.ServerConfig
	deps       Deps
	logger     *slog.Logger
	httpServer *http.Server
	listener   net.Listener

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server. It does not listen until Start.
func NewServer(cfg *config.ServerConfig, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Reconciler == nil {
		deps.Reconciler = reconcile.New(deps.Store, reconcile.Config{})
	}
	if deps.Presets == nil {
		deps.Presets = StaticPresets{Library: preset.DefaultLibrary()}
	}
	if deps.MetricsPath == "" {
		deps.MetricsPath = config.DefaultMetricsPath
	}
	if deps.Health == nil {
		deps.Health = health.New(0)
		store := deps.Store
		deps.Health.Register("store", func(ctx context.Context) error {
			_, err := store.List(ctx)
			return err
		})
	}

	return &Server{
		config:       cfg,
		deps:         deps,
		logger:       deps.Logger.With("component", "timeline.server"),
		shutdownChan: make(chan struct{}),
	}, nil
}

// Start listens on the configured address and serves until ctx is
// cancelled or Shutdown is called, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "address", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	case <-s.shutdownChan:
		s.logger.Info("shutdown requested")
		return nil
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		close(s.shutdownChan)

		s.logger.Info("API server stopped")
	})

	return shutdownErr
}

// Addr returns the bound address while the server is running.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.routes(mux)

	var recorder middleware.RequestRecorder
	if s.deps.Metrics != nil && s.deps.Metrics.Enabled() {
		recorder = s.deps.Metrics
	}

	var handler http.Handler = mux
	handler = middleware.Logging(s.logger, recorder)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(handler)
	return handler
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/config/snapshot/policies", s.handleCreate)
	mux.HandleFunc("PUT /api/config/snapshot/policies", s.handleEdit)
	mux.HandleFunc("GET /api/config/snapshot/policies", s.handleList)
	mux.HandleFunc("DELETE /api/config/snapshot/policies/{id}", s.handleDelete)
	mux.HandleFunc("PUT /api/config/snapshot/policies/{id}/attach/{volume}", s.handleAttach)
	mux.HandleFunc("PUT /api/config/snapshot/policies/{id}/detach/{volume}", s.handleDetach)

	mux.HandleFunc("GET /api/config/volumes/{volume}/snapshot/policies", s.handleListAttached)
	mux.HandleFunc("DELETE /api/config/volumes/{volume}/snapshot/policies", s.handleRelease)
	mux.HandleFunc("GET /api/config/volumes/{volume}/snapshot/preset", s.handleVolumePreset)
	mux.HandleFunc("POST /api/config/volumes/{volume}/snapshot/reconcile", s.handleReconcile)

	mux.HandleFunc("GET /api/config/snapshot/presets", s.handlePresets)
	mux.HandleFunc("POST /api/config/snapshot/presets/match", s.handleMatch)

	mux.Handle("/health", s.deps.Health.LivenessHandler())
	mux.Handle("/ready", s.deps.Health.ReadinessHandler())
	mux.Handle("/version", health.VersionHandler(s.deps.Version, s.deps.Commit, s.deps.BuildTime))

	if s.deps.Metrics != nil && s.deps.Metrics.Enabled() {
		mux.Handle("GET "+s.deps.MetricsPath, s.deps.Metrics.Handler())
	}
}
