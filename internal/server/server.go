// Package server exposes the search and replace workflows as a local JSON
// API.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/aleister1102/sgpatch/internal/orchestrator"
	"github.com/rs/zerolog"
)

const maxRequestBodyBytes = 64 << 20

// Config holds the listener settings
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Server serves the HTTP API
type Server struct {
	config     Config
	service    *orchestrator.Service
	logger     zerolog.Logger
	httpServer *http.Server
}

// NewServer creates a server for service
func NewServer(config Config, service *orchestrator.Service, logger zerolog.Logger) *Server {
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 5 * time.Second
	}
	s := &Server{
		config:  config,
		service: service,
		logger:  logger.With().Str("component", "HTTPServer").Logger(),
	}
	s.httpServer = &http.Server{
		Addr:              config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed API handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/exec-sg-query", s.handleSearch)
	mux.HandleFunc("POST /api/replace-bytes", s.handleReplace)
	mux.HandleFunc("GET /api/sg-check", s.handleCheck)
	mux.HandleFunc("GET /api/state/{key}", s.handleGetState)
	mux.HandleFunc("PUT /api/state/{key}", s.handlePutState)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	return s.logRequests(mux)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", listener.Addr().String()).Msg("HTTP server listening")
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("HTTP server shutdown failed")
			return err
		}
		return <-errCh
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r.Body = http.MaxBytesReader(rec, r.Body, maxRequestBodyBytes)
		next.ServeHTTP(rec, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}
