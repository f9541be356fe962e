// Package server exposes the completion engine, query history and user
// preferences over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/tentacle-scylla/cqlcomplete/internal/logger"
	"github.com/tentacle-scylla/cqlcomplete/internal/metrics"
	"github.com/tentacle-scylla/cqlcomplete/pkg/complete"
	"github.com/tentacle-scylla/cqlcomplete/pkg/history"
	"github.com/tentacle-scylla/cqlcomplete/pkg/prefs"
	"github.com/tentacle-scylla/cqlcomplete/pkg/schema"
)

// Config holds the server dependencies.
type Config struct {
	Engine  *complete.Engine
	History *history.Store
	Prefs   *prefs.Store
	Metrics *metrics.Registry
	Logger  *logger.Logger

	// Schema backs object hovers. Without it only statement, keyword and
	// option help is served.
	Schema *schema.Schema

	Listen          string
	DefaultKeyspace string
	ShutdownTimeout time.Duration
	FlushInterval   time.Duration
}

// Server is the HTTP API.
type Server struct {
	cfg    Config
	log    *logger.Logger
	router chi.Router
}

// New creates a server. Missing optional dependencies get in-memory or
// no-op defaults; Engine and History are required.
func New(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("server: engine is required")
	}
	if cfg.History == nil {
		return nil, errors.New("server: history store is required")
	}
	if cfg.Prefs == nil {
		cfg.Prefs = prefs.NewStore()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRegistry("cqlcomplete")
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{cfg: cfg, log: cfg.Logger}
	s.router = s.routes()
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.accessLog,
		middleware.Recoverer,
	)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", s.cfg.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/complete", s.complete)
		r.Post("/hover", s.hover)
		r.Get("/keywords", s.keywords)
		r.Get("/history/{user}", s.getHistory)
		r.Post("/history/{user}", s.addHistory)
		r.Get("/prefs/{user}", s.getPrefs)
		r.Put("/prefs/{user}", s.putPrefs)
	})
	return r
}

// Serve listens on the configured address and blocks until ctx is done.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Listen, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln next to the history flush loop. When ctx ends
// the server drains open requests and the history queue is flushed.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	eg, egctx := errgroup.WithContext(ctx)

	// Requests outlive ctx so Shutdown can drain them.
	base := context.WithoutCancel(ctx)
	srv := &http.Server{
		Handler: s.router,
		BaseContext: func(_ net.Listener) context.Context {
			return base
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		return s.cfg.History.Run(egctx, s.cfg.FlushInterval)
	})

	eg.Go(func() error {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("serving completion API")
		s.cfg.Metrics.SetReady(true)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		s.cfg.Metrics.SetReady(false)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.log.Debug().Msg("shutting down completion API")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn().Err(err).Msg("requests still running after shutdown timeout")
			_ = srv.Close()
			return err
		}
		return nil
	})

	return eg.Wait()
}

// accessLog logs every request at debug level.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}
