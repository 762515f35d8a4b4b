// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/scipunch/jobscout/config"
	"github.com/scipunch/jobscout/pipeline"
)

// Server answers GET /jobs by running one self-contained pipeline pass per
// request. There is no caching between requests; every call re-fetches every
// feed.
type Server struct {
	conf   config.Config
	runner *pipeline.Runner
	log    *zap.SugaredLogger
}

func New(conf config.Config, runner *pipeline.Runner, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Server{conf: conf, runner: runner, log: log}
}

// Router builds the chi router with logging and panic recovery.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Get("/jobs", s.handleJobs)
	return r
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.conf.Port),
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.log.Infow("server started", "addr", srv.Addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed with %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed with %w", err)
	}
	return nil
}

type jobsResponse struct {
	Count    int             `json:"count"`
	Hours    int             `json:"hours"`
	Keywords []string        `json:"keywords"`
	Exclude  []string        `json:"exclude"`
	Items    []pipeline.Item `json:"items"`
}

// handleJobs runs the pipeline with optional hours/keywords/exclude
// overrides, falling back to process configuration for absent parameters.
// GET /jobs?hours=24&keywords=devops,sre&exclude=intern
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	feeds, err := s.conf.ResolveFeeds()
	if err != nil {
		s.log.Errorw("failed to resolve feeds", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to resolve feed list"})
		return
	}
	if len(feeds) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "No feeds configured. Set FEED_URLS or provide a feeds file.",
		})
		return
	}

	query := pipeline.Query{
		Feeds:    feeds,
		Hours:    s.conf.Hours,
		Keywords: s.conf.Keywords,
		Exclude:  s.conf.Exclude,
		Workers:  s.conf.FetchWorkers,
	}
	if v := r.URL.Query().Get("hours"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "hours must be an integer"})
			return
		}
		query.Hours = hours
	}
	if v := r.URL.Query().Get("keywords"); v != "" {
		query.Keywords = config.SplitKeywords(v)
	}
	if v := r.URL.Query().Get("exclude"); v != "" {
		query.Exclude = config.SplitKeywords(v)
	}

	items := s.runner.Run(r.Context(), query)

	writeJSON(w, http.StatusOK, jobsResponse{
		Count:    len(items),
		Hours:    query.Hours,
		Keywords: emptyNotNil(query.Keywords),
		Exclude:  emptyNotNil(query.Exclude),
		Items:    emptyNotNil(items),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// An encode failure here means the connection is gone
	_ = json.NewEncoder(w).Encode(body)
}

// emptyNotNil keeps empty lists rendering as [] instead of null.
func emptyNotNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Infow("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
