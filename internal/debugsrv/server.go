// Package debugsrv exposes a local diagnostics endpoint: health, metrics and
// the live session snapshot.
package debugsrv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lifecoo/internal/domain"
	"lifecoo/internal/logging"
	"lifecoo/internal/observability"
)

// Source provides the session snapshot served on /status.
type Source interface {
	Status() domain.Status
	Form() domain.TripRequest
	View() domain.ResultView
}

type Server struct {
	addr    string
	source  Source
	metrics *observability.Metrics
	logger  *slog.Logger

	http     *http.Server
	listener net.Listener
	done     chan struct{}
}

func New(addr string, source Source, metrics *observability.Metrics, logger *slog.Logger) *Server {
	return &Server{
		addr:    addr,
		source:  source,
		metrics: metrics,
		logger:  logging.OrDiscard(logger),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Get("/result", s.handleResult)
	r.Handle("/metrics", s.metrics.Handler())
	return r
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("debug server listen %s: %w", s.addr, err)
	}
	s.listener = listener
	s.http = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		if err := s.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("debug server stopped", "error", err)
		}
	}()
	s.logger.Info("debug server listening", "addr", listener.Addr().String())
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	err := s.http.Shutdown(ctx)
	<-s.done
	return err
}

type statusResponse struct {
	Status domain.Status      `json:"status"`
	Form   domain.TripRequest `json:"form"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	if s.source == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "no session"})
		return
	}
	respondJSON(w, http.StatusOK, statusResponse{Status: s.source.Status(), Form: s.source.Form()})
}

func (s *Server) handleResult(w http.ResponseWriter, _ *http.Request) {
	if s.source == nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "no session"})
		return
	}
	respondJSON(w, http.StatusOK, s.source.View())
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
