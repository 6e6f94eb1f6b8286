// Package server exposes history, rankings and charts over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/elonfeng/seedradar/internal/pipeline"
	"github.com/elonfeng/seedradar/internal/store"
	"github.com/elonfeng/seedradar/pkg/source"
	"github.com/elonfeng/seedradar/pkg/trend"
)

// Collector runs one collect invocation.
type Collector interface {
	Run(ctx context.Context, categories []source.Category, opts pipeline.Options) (*pipeline.Result, error)
}

// Locker serializes collect runs.
type Locker interface {
	TryLock() error
	Unlock() error
}

// Options configures the HTTP server.
type Options struct {
	Port        int
	CORSOrigins []string
	RateLimit   float64 // requests per second per client, 0 disables limiting
	RateBurst   int
}

// Server provides the HTTP API.
type Server struct {
	history    store.History
	engine     *trend.Engine
	collector  Collector
	lock       Locker
	categories []source.Category
	opts       Options
	logger     *slog.Logger
}

// New creates a new HTTP server. collector and lock may be nil, in which case
// POST /api/v1/collect is unavailable.
func New(history store.History, engine *trend.Engine, collector Collector, lock Locker,
	categories []source.Category, opts Options, logger *slog.Logger) *Server {
	if opts.Port == 0 {
		opts.Port = 8080
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		history:    history,
		engine:     engine,
		collector:  collector,
		lock:       lock,
		categories: categories,
		opts:       opts,
		logger:     logger,
	}
}

// Handler returns the router with all middleware and routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := corslib.New(corslib.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	r.Use(c.Handler)

	if s.opts.RateLimit > 0 {
		r.Use(rateLimit(s.opts.RateLimit, s.opts.RateBurst))
	}

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/categories", s.handleCategories)
		r.Get("/history", s.handleHistory)
		r.Get("/rankings/{category}/{period}", s.handleRanking)
		r.Get("/charts/{category}", s.handleChart)
		r.Post("/collect", s.handleCollect)
	})

	return r
}

// ListenAndServe starts the HTTP server and shuts it down when ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// loadHistory reads history, treating a missing store as empty.
func (s *Server) loadHistory(ctx context.Context) ([]trend.Record, error) {
	records, err := s.history.Load(ctx)
	if errors.Is(err, store.ErrNoHistory) {
		return nil, nil
	}
	return records, err
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	records, err := s.loadHistory(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	type categoryInfo struct {
		Name       source.Category `json:"name"`
		Records    int             `json:"records"`
		Dates      int             `json:"dates"`
		LatestDate string          `json:"latest_date,omitempty"`
	}

	infos := make([]categoryInfo, 0, len(s.categories))
	for _, category := range s.categories {
		info := categoryInfo{Name: category}
		dates := make(map[string]bool)
		for _, rec := range trend.FilterCategory(records, category) {
			info.Records++
			dates[rec.Date] = true
			if rec.Date > info.LatestDate {
				info.LatestDate = rec.Date
			}
		}
		info.Dates = len(dates)
		infos = append(infos, info)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  infos,
		"count": len(infos),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var category source.Category
	if v := r.URL.Query().Get("category"); v != "" {
		c, err := s.parseCategory(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		category = c
	}
	since := r.URL.Query().Get("since")
	if since != "" {
		if _, err := time.Parse(trend.DateLayout, since); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("since must be YYYY-MM-DD: %w", err))
			return
		}
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	records, err := s.loadHistory(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]trend.Record, 0, len(records))
	for _, rec := range records {
		if category != "" && rec.Category != category {
			continue
		}
		if since != "" && rec.Date < since {
			continue
		}
		out = append(out, rec)
	}
	// Most recent first.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  out,
		"count": len(out),
	})
}

func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	category, err := s.parseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	period, err := trend.ParsePeriod(chi.URLParam(r, "period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	records, err := s.loadHistory(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	ranking, err := s.engine.Ranker().Rank(records, category, period)
	if errors.Is(err, trend.ErrInsufficientHistory) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	category, err := s.parseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	records, err := s.loadHistory(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.Charter().Build(records, category))
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	if s.collector == nil || s.lock == nil {
		writeError(w, http.StatusNotImplemented, errors.New("collect is not enabled"))
		return
	}

	if err := s.lock.TryLock(); err != nil {
		if errors.Is(err, pipeline.ErrBusy) {
			writeError(w, http.StatusConflict, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("release collect lock failed", "err", err)
		}
	}()

	res, err := s.collector.Run(r.Context(), s.categories, pipeline.Options{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) parseCategory(v string) (source.Category, error) {
	c, err := source.ParseCategory(v)
	if err != nil {
		return "", err
	}
	if !slices.Contains(s.categories, c) {
		return "", fmt.Errorf("%w: %q is not enabled", source.ErrUnknownCategory, v)
	}
	return c, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
