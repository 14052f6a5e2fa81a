package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tripgrid/taxi-hotspots/internal/adapter/csvstore"
	"github.com/tripgrid/taxi-hotspots/internal/domain"
	"github.com/tripgrid/taxi-hotspots/internal/observability"
	"github.com/tripgrid/taxi-hotspots/internal/pipeline"
	"github.com/tripgrid/taxi-hotspots/internal/view"
)

// QueryService is the pipeline surface the HTTP layer depends on.
type QueryService interface {
	CheckReadiness(ctx context.Context) error
	DatasetBoroughs() []string
	Process(ctx context.Context, criteria domain.FilterCriteria) (pipeline.Result, error)
}

// Reporter renders a result as a PDF document.
type Reporter interface {
	Write(w io.Writer, result pipeline.Result) error
}

// Server exposes the dashboard API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        QueryService
	reporter   Reporter
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(addr string, svc QueryService, reporter Reporter, logger *slog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:      svc,
		reporter: reporter,
		logger:   logger,
		metrics:  metrics,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/export/pdf", s.handleExportPDF)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.svc.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	result, ok := s.process(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, view.BuildDashboard(result))
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	result, ok := s.process(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := csvstore.WriteTrips(&buf, result.Rows); err != nil {
		s.exportFailed(w, "csv", err)
		return
	}
	s.metrics.Exports.WithLabelValues("csv", "success").Inc()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="nyc_taxi_filtered.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	result, ok := s.process(w, r)
	if !ok {
		return
	}

	// Render to a buffer first so a generation failure can still produce
	// a proper error response instead of a truncated document.
	var buf bytes.Buffer
	if err := s.reporter.Write(&buf, result); err != nil {
		s.exportFailed(w, "pdf", err)
		return
	}
	s.metrics.Exports.WithLabelValues("pdf", "success").Inc()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="nyc_taxi_report.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// process parses the filter criteria from the query string and runs the
// pipeline, writing the error response itself when something fails.
func (s *Server) process(w http.ResponseWriter, r *http.Request) (pipeline.Result, bool) {
	criteria, err := s.parseCriteria(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return pipeline.Result{}, false
	}

	result, err := s.svc.Process(r.Context(), criteria)
	if err != nil {
		s.logger.Error("query failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "query failed"})
		return pipeline.Result{}, false
	}
	return result, true
}

// parseCriteria builds FilterCriteria from hour_from, hour_to, and
// boroughs query parameters. An absent boroughs parameter means every
// borough in the dataset; an explicitly empty one means none.
func (s *Server) parseCriteria(r *http.Request) (domain.FilterCriteria, error) {
	q := r.URL.Query()

	hourFrom, err := parseHourParam(q.Get("hour_from"), 0)
	if err != nil {
		return domain.FilterCriteria{}, err
	}
	hourTo, err := parseHourParam(q.Get("hour_to"), 23)
	if err != nil {
		return domain.FilterCriteria{}, err
	}

	var boroughs []string
	if !q.Has("boroughs") {
		boroughs = s.svc.DatasetBoroughs()
	} else {
		for _, b := range strings.Split(q.Get("boroughs"), ",") {
			if b = strings.TrimSpace(b); b != "" {
				boroughs = append(boroughs, b)
			}
		}
	}

	return domain.FilterCriteria{HourFrom: hourFrom, HourTo: hourTo, Boroughs: boroughs}, nil
}

func parseHourParam(value string, fallback int) (int, error) {
	if value == "" {
		return fallback, nil
	}
	hour, err := strconv.Atoi(value)
	if err != nil || hour < 0 || hour > 23 {
		return 0, &badParamError{param: value}
	}
	return hour, nil
}

type badParamError struct {
	param string
}

func (e *badParamError) Error() string {
	return "hour parameters must be integers between 0 and 23, got " + strconv.Quote(e.param)
}

func (s *Server) exportFailed(w http.ResponseWriter, format string, err error) {
	s.logger.Error("export failed", "format", format, "error", err)
	s.metrics.Exports.WithLabelValues(format, "error").Inc()
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{
		"error": format + " export failed, try again",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
