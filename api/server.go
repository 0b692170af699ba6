// Package api provides the HTTP surface for shashtho.
//
// Endpoints:
//
//	GET  /               → liveness probe (constant response)
//	GET  /health         → liveness probe
//	GET  /ready          → readiness probe (initialized languages)
//	POST /chat           → answer a user query (orchestrator)
//	POST /build-vectordb → (re)build a language's vector index
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: recovery and request logging
//   - health.go: liveness/readiness probes
//   - chat.go: chat endpoint
//   - vectordb.go: index build endpoint
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/shashtho/shashtho/internal/log"
)

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8080"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds header reads (Slowloris protection).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// Generation calls can be slow; give them room.
	WriteTimeout = 2 * time.Minute

	// IdleTimeout bounds keep-alive waits.
	IdleTimeout = 2 * time.Minute
)

// Server is the HTTP server for shashtho's REST API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	health   *HealthHandler
	chat     *ChatHandler
	vectordb *VectorDBHandler
}

// NewServer creates a server with all routes registered.
func NewServer(orch Orchestrator, builder Ingestor, readiness ReadinessReporter, logger log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:      mux,
		logger:   logger,
		health:   NewHealthHandler(readiness, logger),
		chat:     NewChatHandler(orch, logger),
		vectordb: NewVectorDBHandler(builder, logger),
	}

	s.health.RegisterRoutes(mux)
	s.chat.RegisterRoutes(mux)
	s.vectordb.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
	)
}

// Run starts the server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
