// Package server exposes the equity engine over HTTP and a websocket progress stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/pokerequity/equity"
	"github.com/lox/pokerequity/internal/store"
)

// Cache stores deterministic results between requests. *store.Cache implements it.
type Cache interface {
	Get(ctx context.Context, req equity.Request) (*equity.Result, bool, error)
	Put(ctx context.Context, req equity.Request, result *equity.Result) error
	Stats(ctx context.Context) (store.Stats, error)
}

// Option configures a Server.
type Option func(*Server)

// WithCache enables result caching.
func WithCache(cache Cache) Option {
	return func(s *Server) { s.cache = cache }
}

// WithClock sets the clock used for uptime and request timing.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithTimeout bounds each calculation. Zero disables the limit.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// WithCalculatorOptions configures the equity calculator used for every request.
func WithCalculatorOptions(opts ...equity.Option) Option {
	return func(s *Server) { s.calcOpts = append(s.calcOpts, opts...) }
}

// Server handles equity requests.
type Server struct {
	calc     *equity.Calculator
	calcOpts []equity.Option
	cache    Cache
	logger   zerolog.Logger
	clock    quartz.Clock
	started  time.Time
	timeout  time.Duration
	upgrader websocket.Upgrader
}

// New creates a server. It fails if the calculator options are invalid.
func New(logger zerolog.Logger, opts ...Option) (*Server, error) {
	s := &Server{
		logger:  logger.With().Str("component", "server").Logger(),
		clock:   quartz.NewReal(),
		timeout: 30 * time.Second,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.calcOpts = append(s.calcOpts, equity.WithClock(s.clock), equity.WithLogger(logger))

	calc, err := equity.NewCalculator(s.calcOpts...)
	if err != nil {
		return nil, fmt.Errorf("invalid calculator settings: %w", err)
	}
	s.calc = calc
	s.started = s.clock.Now()
	return s, nil
}

// Routes returns the HTTP handler with middleware applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/calculate-equity", s.handleCalculateEquity)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/equity", s.handleEquity)
		r.Get("/equity/stream", s.handleStream)
		r.Get("/stats", s.handleStats)
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting equity server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info().Msg("Server stopped")
	return nil
}

// calculate serves req from the cache when possible, otherwise runs the engine
// under the server's timeout and stores the result.
func (s *Server) calculate(ctx context.Context, req equity.Request, progress func(equity.Progress)) (*equity.Result, error) {
	if err := s.calc.Validate(req); err != nil {
		return nil, err
	}

	useCache := s.cache != nil && req.Strategy != equity.StrategyMonteCarlo
	if useCache {
		res, ok, err := s.cache.Get(ctx, req)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Msg("Cache lookup failed")
		case ok:
			s.logger.Debug().Str("id", res.ID.String()).Msg("Served from cache")
			return res, nil
		}
	}

	calc := s.calc
	if progress != nil {
		var err error
		calc, err = equity.NewCalculator(append(slices.Clone(s.calcOpts), equity.WithProgress(progress))...)
		if err != nil {
			return nil, err
		}
	}

	runCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := calc.Calculate(runCtx, req)
	if err != nil {
		return nil, err
	}
	if useCache {
		if err := s.cache.Put(ctx, req, res); err != nil {
			s.logger.Warn().Err(err).Msg("Cache store failed")
		}
	}
	return res, nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := s.clock.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", s.clock.Since(start)).
			Msg("Request handled")
	})
}
