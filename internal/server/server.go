// Package server exposes a feed source over HTTP so a remote crewview can
// poll it: POST /api/run starts a run, GET /api/status returns the current
// snapshot, and GET /metrics serves Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Iron-Ham/crewview/internal/feed"
	"github.com/Iron-Ham/crewview/internal/logging"
)

const alreadyRunningMessage = "Process is already running"

// Options configures the server.
type Options struct {
	Addr   string
	Logger *logging.Logger
	// CORS allows browser clients served from another origin.
	CORS bool
}

// Server serves one feed source.
type Server struct {
	source  feed.Source
	opts    Options
	logger  *logging.Logger
	metrics *metrics
	handler http.Handler
}

type metrics struct {
	registry       *prometheus.Registry
	runs           prometheus.Counter
	statusRequests *prometheus.CounterVec
	logLines       prometheus.Gauge
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crewview_runs_total",
			Help: "Runs started through /api/run.",
		}),
		statusRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crewview_status_requests_total",
			Help: "Status requests served, by outcome.",
		}, []string{"outcome"}),
		logLines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "crewview_log_lines",
			Help: "Log lines in the current run's snapshot.",
		}),
	}
	m.registry.MustRegister(m.runs, m.statusRequests, m.logLines)
	return m
}

// New creates a server for source.
func New(source feed.Source, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.NopLogger()
	}
	s := &Server{
		source:  source,
		opts:    opts,
		logger:  opts.Logger.WithComponent("server"),
		metrics: newMetrics(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	mux.HandleFunc("/api/run", s.handleRun)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))

	var h http.Handler = mux
	if opts.CORS {
		h = corsMiddleware(h)
	}
	s.handler = h
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if snap, err := s.source.Status(r.Context()); err == nil && snap.Status == feed.StatusRunning {
		writeJSONError(w, http.StatusBadRequest, alreadyRunningMessage)
		return
	}

	err := s.source.Start(r.Context())
	switch {
	case errors.Is(err, feed.ErrAlreadyRunning):
		writeJSONError(w, http.StatusBadRequest, alreadyRunningMessage)
		return
	case err != nil:
		s.logger.Error("failed to start run", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "error": err.Error()})
		return
	}

	runID := uuid.NewString()
	s.metrics.runs.Inc()
	s.logger.WithRun(runID).Info("run started")
	writeJSON(w, http.StatusOK, map[string]any{"status": "started", "run_id": runID})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap, err := s.source.Status(r.Context())
	if err != nil {
		s.metrics.statusRequests.WithLabelValues("error").Inc()
		s.logger.Warn("status failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"status": "error", "error": err.Error()})
		return
	}
	if snap.Timestamp == 0 {
		snap.Timestamp = float64(time.Now().UnixNano()) / 1e9
	}
	if snap.Logs == nil {
		snap.Logs = []string{}
	}
	s.metrics.statusRequests.WithLabelValues("ok").Inc()
	s.metrics.logLines.Set(float64(len(snap.Logs)))
	writeJSON(w, http.StatusOK, snap)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// writeJSONError sends {"error": message} with the given status code.
func writeJSONError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]any{"error": message})
}
