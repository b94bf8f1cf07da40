// Package server exposes generation runs over HTTP as Server-Sent Events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"figma-to-fsd/internal/common/config"
	apperrors "figma-to-fsd/internal/common/errors"
	"figma-to-fsd/internal/common/logger"
	"figma-to-fsd/internal/models"
)

const maxRequestBytes = 1 << 20

// Runner starts a generation run. *workflow.Orchestrator implements it.
type Runner interface {
	Run(ctx context.Context, req models.GenerationRequest) <-chan models.Event
}

// EventStore replays the recorded events of a run.
type EventStore interface {
	ReadRun(ctx context.Context, runID string) ([]models.Event, error)
}

// ReadinessCheck reports whether a dependency can serve requests.
type ReadinessCheck func(ctx context.Context) error

type Deps struct {
	Config *config.ServerConfig
	Runner Runner
	// Events is optional; without it run replay answers 404.
	Events EventStore
	Checks map[string]ReadinessCheck
	Logger logger.Logger
}

type Server struct {
	deps Deps
	http *http.Server
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.NewNoOpLogger()
	}
	if deps.Config == nil {
		deps.Config = &config.ServerConfig{Address: ":8080"}
	}
	s := &Server{deps: deps}
	s.http = &http.Server{
		Addr:              deps.Config.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/runs/{id}/events", s.handleRunEvents)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// ListenAndServe blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) ListenAndServe() error {
	s.deps.Logger.Info("HTTP server listening", map[string]interface{}{"address": s.http.Addr})
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// handleGenerate streams the events of one run. Request validation happens in
// the run itself, so an invalid request still gets a terminal error event.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req models.GenerationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.NewInputValidationError(fmt.Sprintf("request body: %v", err)))
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.deps.Logger.Info("Generation requested", map[string]interface{}{
		"componentName": req.ComponentName,
		"mode":          string(req.Mode),
		"remoteAddr":    r.RemoteAddr,
	})

	// The run is cancelled with the request; draining continues until the
	// channel closes so the run goroutine can finish.
	for ev := range s.deps.Runner.Run(r.Context(), req) {
		if r.Context().Err() != nil {
			continue
		}
		data, err := json.Marshal(ev)
		if err != nil {
			s.deps.Logger.Error("Failed to encode event", map[string]interface{}{"error": err.Error(), "runId": ev.RunID})
			continue
		}
		fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", ev.Sequence, ev.Type, data)
		flusher.Flush()
	}
}

func (s *Server) handleRunEvents(w http.ResponseWriter, r *http.Request) {
	if s.deps.Events == nil {
		http.NotFound(w, r)
		return
	}
	events, err := s.deps.Events.ReadRun(r.Context(), r.PathValue("id"))
	if err != nil {
		s.deps.Logger.Error("Failed to read run events", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusBadGateway, apperrors.NewExternalServiceError("redis", err))
		return
	}
	if len(events) == 0 {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		s.deps.Logger.Warn("Readiness check failed", map[string]interface{}{"failed": failed})
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "not_ready",
			"failed": failed,
			"time":   time.Now().Format(time.RFC3339),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err *apperrors.StandardError) {
	writeJSON(w, status, map[string]interface{}{"error": err})
}
