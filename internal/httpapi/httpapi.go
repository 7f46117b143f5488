// Package httpapi serves the stored attempt history as a read-only JSON feed.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/verte-zerg/typetest/internal/logging"
	"github.com/verte-zerg/typetest/internal/model"
	"github.com/verte-zerg/typetest/internal/stats"
)

// Handler provides the HTTP API for attempt history.
type Handler struct {
	lister stats.AttemptLister
	router chi.Router
}

// New creates a new HTTP API handler.
func New(lister stats.AttemptLister) *Handler {
	h := &Handler{lister: lister}
	h.router = h.buildRouter()
	return h
}

// Router returns the HTTP router.
func (h *Handler) Router() chi.Router {
	return h.router
}

func (h *Handler) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Get("/attempts", h.handleListAttempts)
		r.Get("/summary", h.handleSummary)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

// Serve listens on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Logger.Error("failed to shut down http server", "error", err)
		}
	}()

	logging.Logger.Info("serving attempt history", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type summaryResponse struct {
	Attempts      int       `json:"attempts"`
	TotalStored   int       `json:"total_stored"`
	AvgWPM        float64   `json:"avg_wpm"`
	BestWPM       int       `json:"best_wpm"`
	AvgAccuracy   float64   `json:"avg_accuracy"`
	TotalSeconds  int       `json:"total_seconds"`
	Window        int       `json:"window"`
	WPMTrend      []float64 `json:"wpm_trend"`
	AccuracyTrend []float64 `json:"accuracy_trend"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) handleListAttempts(w http.ResponseWriter, r *http.Request) {
	cfg, err := parseHistoryQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := stats.BuildReport(r.Context(), h.lister, cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list attempts")
		logging.Logger.Error("failed to list attempts", "error", err)
		return
	}
	attempts := report.Attempts
	if attempts == nil {
		attempts = []model.Attempt{}
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	cfg, err := parseHistoryQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	report, err := stats.BuildReport(r.Context(), h.lister, cfg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		logging.Logger.Error("failed to build summary", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		Attempts:      report.Summary.Attempts,
		TotalStored:   report.TotalStored,
		AvgWPM:        stats.Round2(report.Summary.AvgWPM),
		BestWPM:       report.Summary.BestWPM,
		AvgAccuracy:   stats.Round2(report.Summary.AvgAccuracy),
		TotalSeconds:  report.Summary.TotalTime,
		Window:        report.Window,
		WPMTrend:      roundAll(report.WPMTrend),
		AccuracyTrend: roundAll(report.AccTrend),
	})
}

func parseHistoryQuery(r *http.Request) (model.HistoryConfig, error) {
	q := r.URL.Query()
	cfg := model.HistoryConfig{Window: 1}
	if s := strings.TrimSpace(q.Get("since")); s != "" {
		parsed, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			return cfg, errors.New("since must be YYYY-MM-DD")
		}
		cfg.Since = &parsed
	}
	if s := strings.TrimSpace(q.Get("last")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return cfg, errors.New("last must be a non-negative integer")
		}
		cfg.Last = n
	}
	if s := strings.TrimSpace(q.Get("window")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return cfg, errors.New("window must be a positive integer")
		}
		cfg.Window = n
	}
	return cfg, nil
}

func roundAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = stats.Round2(v)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
