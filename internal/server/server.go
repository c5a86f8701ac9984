// Package server exposes stored runs and on-demand layouts over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/san-kum/fdgsim/internal/dynamo"
	"github.com/san-kum/fdgsim/internal/export"
	"github.com/san-kum/fdgsim/internal/jsongraph"
	"github.com/san-kum/fdgsim/internal/sim"
	"github.com/san-kum/fdgsim/internal/storage"
	"github.com/san-kum/fdgsim/internal/viz"
)

const (
	defaultMaxBodyBytes = 8 << 20
	// maxLayoutSteps caps the steps query parameter of POST /layout.
	maxLayoutSteps = 20000
)

type Config struct {
	Addr       string
	Parameters sim.Parameters
	Run        sim.RunConfig
	// MaxBodyBytes limits POST /layout documents; zero selects 8 MiB.
	MaxBodyBytes int64
}

type Server struct {
	cfg    Config
	store  *storage.Store
	logger *log.Logger
	router chi.Router
}

func New(cfg Config, store *storage.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaultMaxBodyBytes
	}
	s := &Server{cfg: cfg, store: store, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/runs", s.handleListRuns)
	r.Route("/runs/{id}", func(r chi.Router) {
		r.Get("/", s.handleRun)
		r.Get("/graph.json", s.handleRunGraph)
		r.Get("/layout.svg", s.handleRunSVG)
		r.Get("/history.svg", s.handleRunHistory)
	})
	r.Post("/layout", s.handleLayout)

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "elapsed", time.Since(start).Round(time.Microsecond))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusOf(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, dynamo.ErrMalformedImport), errors.Is(err, dynamo.ErrInvalidConfiguration):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := s.store.Resolve(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusOf(err), err)
		return "", false
	}
	return id, true
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.List()
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolve(w, r)
	if !ok {
		return
	}
	meta, err := s.store.Load(id)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (s *Server) handleRunGraph(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolve(w, r)
	if !ok {
		return
	}
	g, err := s.store.LoadGraph(id)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := jsongraph.Write(w, g); err != nil {
		s.logger.Warn("write graph", "run", id, "err", err)
	}
}

func (s *Server) handleRunSVG(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolve(w, r)
	if !ok {
		return
	}
	meta, err := s.store.Load(id)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	g, err := s.store.LoadGraph(id)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	opts := export.DefaultSVGOptions()
	if meta.Dimensions == int(dynamo.ThreeD) {
		opts.Camera = viz.NewCamera()
		opts.Camera.RotX, opts.Camera.RotY, opts.Camera.Perspective = 0.4, 0.6, true
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = io.WriteString(w, export.LayoutToSVG(g, opts))
}

func (s *Server) handleRunHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resolve(w, r)
	if !ok {
		return
	}
	history, err := s.store.LoadHistory(id)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	values := make([]float64, len(history))
	for i, st := range history {
		values[i] = st.MaxDisplacement
	}
	plot := export.SeriesToSVG(values, 800, 240, "#00ff88")
	if plot == "" {
		writeError(w, http.StatusNotFound, fmt.Errorf("run %s has too little history", id))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = io.WriteString(w, plot)
}

// handleLayout imports the posted graph document, runs it to rest and returns
// the same document with node locations. Query parameters seed, steps and
// dims override the server defaults; keep=1 starts from the posted locations
// and scatters only nodes without one.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	g, err := jsongraph.Read(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	params, rc := s.cfg.Parameters, s.cfg.Run
	q := r.URL.Query()
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("seed: %w", err))
			return
		}
		params.Seed = seed
	}
	if v := q.Get("steps"); v != "" {
		steps, err := strconv.Atoi(v)
		if err != nil || steps <= 0 || steps > maxLayoutSteps {
			writeError(w, http.StatusBadRequest, fmt.Errorf("steps must be in 1..%d", maxLayoutSteps))
			return
		}
		rc.MaxSteps = steps
	}
	if v := q.Get("dims"); v != "" {
		d, err := dynamo.ParseDimensions(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		params.Dimensions = d
	}
	keep := false
	if v := q.Get("keep"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("keep: %w", err))
			return
		}
		keep = b
	}
	rc.KeepHistory = false

	simulation, err := sim.New(g, params)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	if keep {
		simulation.ScatterUnplaced()
	} else {
		simulation.ResetNodePlacement()
	}
	result, err := simulation.Run(r.Context(), rc)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}

	w.Header().Set("X-Layout-Steps", strconv.Itoa(result.StepsTaken))
	w.Header().Set("X-Layout-Settled", strconv.FormatBool(result.Settled))
	w.Header().Set("Content-Type", "application/json")
	if err := jsongraph.Write(w, g); err != nil {
		s.logger.Warn("write layout", "err", err)
	}
}
