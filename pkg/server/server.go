package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Herocku2/solana-token-creatorf/pkg/config"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy/handlers"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy/middleware"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy/types"
	"github.com/Herocku2/solana-token-creatorf/pkg/routing"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/health"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/metrics"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/tracing"
)

// Dependencies are the components the routes are served by.
type Dependencies struct {
	// Forwarder relays RPC calls. Required.
	Forwarder handlers.Forwarder

	// Selection reports cached endpoint selections. Required.
	Selection handlers.SelectionSource

	// Admitter applies the per-client quota. Required unless admission is
	// disabled.
	Admitter middleware.Admitter

	// Uploader relays uploads to the storage backend. Required.
	Uploader handlers.Uploader

	// Checker serves /health and /ready. Required.
	Checker *health.Checker

	// Version is served on /version.
	Version health.VersionInfo

	// Metrics records requests and serves the metrics path. Optional.
	Metrics *metrics.Collector

	// Tracer provides server spans. Defaults to a noop provider.
	Tracer trace.TracerProvider

	// TLS serves HTTPS when set. It must provide certificates through
	// Certificates or GetCertificate.
	TLS *tls.Config
}

// Server is the gateway's HTTP server.
type Server struct {
	config     *config.Config
	deps       Dependencies
	httpServer *http.Server
	listener   net.Listener

	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new gateway server.
func NewServer(cfg *config.Config, deps Dependencies) (*Server, error) {
	if deps.Forwarder == nil || deps.Selection == nil || deps.Uploader == nil || deps.Checker == nil {
		return nil, errors.New("forwarder, selection, uploader and checker are required")
	}
	if !cfg.Admission.Disabled && deps.Admitter == nil {
		return nil, errors.New("admitter is required when admission is enabled")
	}
	if _, err := routing.ParseSegment(cfg.RPC.DefaultSegment); err != nil {
		return nil, fmt.Errorf("invalid default segment: %w", err)
	}
	if deps.Tracer == nil {
		deps.Tracer = noop.NewTracerProvider()
	}

	return &Server{
		config: cfg,
		deps:   deps,
	}, nil
}

// Start listens on the configured address and serves until ctx is done or
// the server fails. It always returns after a graceful shutdown attempt.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.Proxy.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.Proxy.ListenAddress, err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Proxy.ReadTimeout,
		WriteTimeout:   s.config.Proxy.WriteTimeout,
		IdleTimeout:    s.config.Proxy.IdleTimeout,
		MaxHeaderBytes: s.config.Proxy.MaxHeaderBytes,
		TLSConfig:      s.deps.TLS,
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server",
			"component", "server",
			"address", listener.Addr().String(),
			"api_prefix", s.config.Proxy.APIPrefix,
			"admission", !s.config.Admission.Disabled,
			"tls", s.deps.TLS != nil,
		)

		var err error
		if s.deps.TLS != nil {
			err = s.httpServer.ServeTLS(listener, "", "")
		} else {
			err = s.httpServer.Serve(listener)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown", "component", "server")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		_ = s.Shutdown(context.Background())
		return err
	}
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.RLock()
		running := s.isRunning
		s.mu.RUnlock()
		if !running {
			return
		}

		slog.Info("initiating graceful shutdown",
			"component", "server",
			"timeout", s.config.Proxy.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Proxy.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error during server shutdown", "component", "server", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped", "component", "server")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// setupRoutes configures the route table and middleware chain. Middleware
// order, outermost first: recovery, request ID, tracing, logging, security
// headers, CORS, CSRF cookie. Admission applies to the API prefix only.
func (s *Server) setupRoutes() http.Handler {
	cfg := s.config
	router := chi.NewRouter()

	var observer middleware.RequestObserver
	if s.deps.Metrics != nil {
		observer = s.deps.Metrics
	}

	router.Use(
		middleware.RecoveryMiddleware,
		middleware.RequestIDMiddleware,
		tracing.HTTPMiddleware(s.deps.Tracer, routePattern),
		middleware.LoggingMiddleware(observer, routePattern),
		middleware.SecurityHeadersMiddleware(cfg.Proxy.Headers),
		middleware.CORSMiddleware(cfg.Proxy.CORS),
		middleware.CSRFCookieMiddleware(cfg.Proxy.CSRF),
	)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = proxy.WriteErrorResponse(w, r, types.NewErrorResponse(http.StatusNotFound, types.KindClientError, "Not found"))
	})

	router.Get("/health", s.deps.Checker.LivenessHandler())
	router.Get("/ready", s.deps.Checker.ReadinessHandler())
	router.Get("/version", health.VersionHandler(s.deps.Version))
	if s.deps.Metrics != nil && cfg.Telemetry.Metrics.Enabled {
		router.Handle(cfg.Telemetry.Metrics.Path, s.deps.Metrics.Handler())
	}

	// Validated in NewServer.
	defaultSegment, _ := routing.ParseSegment(cfg.RPC.DefaultSegment)
	maxBody := cfg.RPC.MaxBodyBytes

	router.Route(cfg.Proxy.APIPrefix, func(api chi.Router) {
		if !cfg.Admission.Disabled {
			api.Use(middleware.AdmissionMiddleware(s.deps.Admitter, middleware.AdmissionConfig{
				TrustForwardedHeaders: cfg.Proxy.TrustForwardedHeaders,
			}))
		}

		if !cfg.RPC.Generic.Disabled {
			generic := handlers.NewGenericRPCHandler(s.deps.Forwarder, maxBody, cfg.RPC.Generic.AllowedHosts)
			api.Handle("/rpc/generic", generic)
			api.Handle("/solana-rpc", generic)
		}
		api.Handle("/rpc/{"+handlers.SegmentParam+"}", handlers.NewRPCHandler(s.deps.Forwarder, maxBody))
		api.Handle("/proxy-solana", handlers.NewFixedRPCHandler(s.deps.Forwarder, defaultSegment, maxBody))
		api.Handle("/upload", handlers.NewUploadHandler(s.deps.Uploader, cfg.Storage.MaxUploadBytes))
		api.Handle("/endpoints/{"+handlers.SegmentParam+"}", handlers.NewEndpointsHandler(s.deps.Selection))
	})

	return router
}

// routePattern returns the chi route pattern the request matched.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return ""
	}
	return rctx.RoutePattern()
}
