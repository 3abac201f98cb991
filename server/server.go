// Package server exposes a set of opened multi-precision files over HTTP.
//
// Routes:
//
//	GET /healthz                      liveness probe
//	GET /metrics                      Prometheus metrics
//	GET /v1/bodies                    registered series and their coverage
//	GET /v1/coverage?body=&quantity=  coverage and tier layout of one series
//	GET /v1/value?body=&quantity=&t=  evaluate a series at an RFC 3339 time
//
// Evaluation is lock-free on the underlying files, so the server handles
// concurrent queries without additional synchronization.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ephemeralab/mpeph/catalog"
	"github.com/ephemeralab/mpeph/errs"
	"github.com/ephemeralab/mpeph/format"
	"github.com/ephemeralab/mpeph/mpfile"
)

// Server serves point queries against registered multi-precision files.
// Registration happens before Run; the series set is immutable while serving.
type Server struct {
	logger  zerolog.Logger
	metrics *metrics
	series  map[seriesKey]*mpfile.File
}

type seriesKey struct {
	body     format.Body
	quantity format.Quantity
}

// New creates an empty Server logging through logger.
func New(logger zerolog.Logger) *Server {
	return &Server{
		logger:  logger,
		metrics: newMetrics(),
		series:  make(map[seriesKey]*mpfile.File),
	}
}

// Add registers an opened file. The caller keeps ownership and must not
// close the file while the server is running. Registering a second file for
// the same (body, quantity) series is an error.
func (s *Server) Add(f *mpfile.File) error {
	key := seriesKey{body: f.Body(), quantity: f.Quantity()}
	if _, ok := s.series[key]; ok {
		return fmt.Errorf("series %s/%s already registered", key.body, key.quantity)
	}
	s.series[key] = f

	return nil
}

// Handler builds the chi router for the server's routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}).ServeHTTP)
	r.Get("/v1/bodies", s.handleBodies)
	r.Get("/v1/coverage", s.handleCoverage)
	r.Get("/v1/value", s.handleValue)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Int("series", len(s.series)).Msg("http listen")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.metrics.requests.WithLabelValues(r.URL.Path, fmt.Sprintf("%d", ww.Status())).Inc()
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}

type seriesInfo struct {
	Body     string    `json:"body"`
	Quantity string    `json:"quantity"`
	Start    time.Time `json:"coverage_start"`
	End      time.Time `json:"coverage_end"`
}

func (s *Server) handleBodies(w http.ResponseWriter, _ *http.Request) {
	out := make([]seriesInfo, 0, len(s.series))
	for key, f := range s.series {
		start, end := f.Coverage()
		out = append(out, seriesInfo{
			Body:     key.body.String(),
			Quantity: key.quantity.String(),
			Start:    start,
			End:      end,
		})
	}

	writeJSON(w, http.StatusOK, out)
}

type tierInfo struct {
	Tier       string `json:"tier"`
	WindowDays int64  `json:"window_days"`
	Blocks     int    `json:"blocks"`
}

type coverageInfo struct {
	seriesInfo
	Blocks int        `json:"blocks"`
	Tiers  []tierInfo `json:"tiers"`
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	f, key, ok := s.lookup(w, r)
	if !ok {
		return
	}

	start, end := f.Coverage()
	info := coverageInfo{
		seriesInfo: seriesInfo{
			Body:     key.body.String(),
			Quantity: key.quantity.String(),
			Start:    start,
			End:      end,
		},
		Blocks: f.BlockCount(),
	}
	for _, ts := range f.TierStats() {
		info.Tiers = append(info.Tiers, tierInfo{
			Tier:       ts.Tier.String(),
			WindowDays: ts.Tier.WindowDays(),
			Blocks:     ts.Blocks,
		})
	}

	writeJSON(w, http.StatusOK, info)
}

type valueResult struct {
	Body     string    `json:"body"`
	Quantity string    `json:"quantity"`
	Time     time.Time `json:"time"`
	Value    float64   `json:"value"`
}

func (s *Server) handleValue(w http.ResponseWriter, r *http.Request) {
	f, key, ok := s.lookup(w, r)
	if !ok {
		return
	}

	t, err := time.Parse(time.RFC3339Nano, r.URL.Query().Get("t"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid t: %w", err))
		return
	}

	start := time.Now()
	v, err := f.Evaluate(t)
	s.metrics.evalSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		status := "error"
		code := http.StatusInternalServerError
		if errors.Is(err, errs.ErrOutOfRange) || errors.Is(err, errs.ErrNaiveTime) {
			status = "out_of_range"
			code = http.StatusUnprocessableEntity
		}
		s.metrics.evaluations.WithLabelValues(key.body.String(), key.quantity.String(), status).Inc()
		writeError(w, code, err)

		return
	}

	s.metrics.evaluations.WithLabelValues(key.body.String(), key.quantity.String(), "ok").Inc()
	writeJSON(w, http.StatusOK, valueResult{
		Body:     key.body.String(),
		Quantity: key.quantity.String(),
		Time:     t.UTC(),
		Value:    v,
	})
}

// lookup resolves the body and quantity query parameters to a registered
// file, writing the error response itself when resolution fails.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*mpfile.File, seriesKey, bool) {
	body, err := catalog.BodyByName(r.URL.Query().Get("body"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, seriesKey{}, false
	}

	quantity, err := catalog.QuantityByName(r.URL.Query().Get("quantity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return nil, seriesKey{}, false
	}

	key := seriesKey{body: body, quantity: quantity}
	f, ok := s.series[key]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no file registered for %s/%s", body, quantity))
		return nil, seriesKey{}, false
	}

	return f, key, true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
