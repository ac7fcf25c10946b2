// Package server hosts the user view and the mock user API over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/leslieo2/go-user-demo/internal/api"
	"github.com/leslieo2/go-user-demo/internal/config"
	"github.com/leslieo2/go-user-demo/internal/model"
	"github.com/leslieo2/go-user-demo/internal/observability"
	"github.com/leslieo2/go-user-demo/internal/openapi"
	"github.com/leslieo2/go-user-demo/internal/random"
	"github.com/leslieo2/go-user-demo/internal/security"
	"github.com/leslieo2/go-user-demo/internal/viewmodel"
)

const metricsListener = "metrics"

// ConfigLoader re-reads configuration for hot reload.
type ConfigLoader func() (*config.Config, error)

type Server struct {
	mu     sync.RWMutex
	config *config.Config
	loader ConfigLoader

	provider    *api.Service
	view        *viewmodel.App
	docs        *openapi3.T
	rateLimiter *security.RateLimiter

	logger    *observability.Logger
	metrics   *observability.Metrics
	tracer    *observability.Tracer
	clock     clockwork.Clock
	rand      random.Source
	startTime time.Time

	server        *http.Server
	metricsServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *observability.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func WithTracer(t *observability.Tracer) Option {
	return func(s *Server) { s.tracer = t }
}

// WithClock replaces the clock used by the provider, the rate limiter and delays.
func WithClock(c clockwork.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithRandom overrides the provider's random source regardless of app.seed.
func WithRandom(r random.Source) Option {
	return func(s *Server) { s.rand = r }
}

// WithConfigLoader sets how Reload obtains fresh configuration.
func WithConfigLoader(l ConfigLoader) Option {
	return func(s *Server) { s.loader = l }
}

// New wires the provider, the view and the observability stack. Nothing
// listens until Run.
func New(cfg *config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		config:    cfg,
		clock:     clockwork.NewRealClock(),
		docs:      openapi.Document(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		logger, err := observability.NewLogger(cfg.Observability.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		s.logger = logger
	}
	if s.tracer == nil {
		tracer, err := observability.NewTracer(cfg.Observability.Tracing)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}
		s.tracer = tracer
	}
	if s.rand == nil {
		if cfg.App.Seed != 0 {
			s.rand = random.NewSeededSource(cfg.App.Seed)
		} else {
			s.rand = random.NewSecureSource()
		}
	}
	if s.loader == nil && cfg.ConfigFile != "" {
		file := cfg.ConfigFile
		s.loader = func() (*config.Config, error) { return config.LoadConfig(file, nil) }
	}

	if err := openapi.Validate(context.Background(), s.docs); err != nil {
		return nil, err
	}

	s.metrics = observability.NewMetrics()

	s.provider = api.NewService(
		api.WithClock(s.clock),
		api.WithRandom(s.rand),
		api.WithLogger(s.logger.Named("provider")),
		api.WithTracer(s.tracer),
		api.WithMetrics(s.metrics),
	)

	s.view = viewmodel.New(s.provider, cfg.App.Title,
		viewmodel.WithLogger(s.logger.Named("view")),
		viewmodel.WithSettleAll(cfg.App.SettleAll),
	)
	if err := s.mirrorViewState(); err != nil {
		return nil, err
	}

	s.rateLimiter = security.NewRateLimiter(&cfg.Security.RateLimit,
		security.WithClock(s.clock),
		security.WithLogger(s.logger.Logger),
	)

	return s, nil
}

// mirrorViewState keeps the view gauges in step with the cells.
func (s *Server) mirrorViewState() error {
	update := func() {
		s.metrics.SetViewState(len(s.view.Users().Get()), s.view.Loading().Get())
	}
	if err := s.view.Users().Subscribe(metricsListener, func(_, _ []model.User) { update() }); err != nil {
		return fmt.Errorf("failed to subscribe to users: %w", err)
	}
	if err := s.view.Loading().Subscribe(metricsListener, func(_, _ bool) { update() }); err != nil {
		return fmt.Errorf("failed to subscribe to loading: %w", err)
	}
	update()
	return nil
}

// Logger returns the server's root logger.
func (s *Server) Logger() *zap.Logger {
	return s.logger.Logger
}

// View exposes the view state, mainly for tests.
func (s *Server) View() *viewmodel.App {
	return s.view
}

// Activate initializes the view. It runs once; Run calls it before listening.
func (s *Server) Activate(ctx context.Context) {
	s.view.Init(ctx)
	s.metrics.SetHealthStatus(true)
}

// Run serves until ctx is cancelled, then shuts down within
// server.shutdown_timeout.
func (s *Server) Run(ctx context.Context) error {
	cfg := s.currentConfig()
	s.Activate(ctx)

	s.server = &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        s.Handler(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: 1 << 20,
		ConnState:      s.trackConnections,
	}

	errCh := make(chan error, 2)

	if cfg.Observability.Metrics.Enabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle(cfg.Observability.Metrics.Path, s.metrics.Handler())
		s.metricsServer = &http.Server{
			Addr:              cfg.GetMetricsAddress(),
			Handler:           metricsMux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		s.logger.Info("Starting metrics server", zap.String("addr", s.metricsServer.Addr))
		go func() {
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server: %w", err)
			}
		}()
	}

	s.logger.Info("Starting server",
		zap.String("addr", s.server.Addr),
		zap.String("title", cfg.App.Title),
		zap.Bool("tls", cfg.TLS.Enabled),
		zap.Bool("tracing", s.tracer.Enabled()),
		zap.Int("api_routes", len(openapi.Routes(s.docs))),
	)
	go func() {
		var err error
		if cfg.TLS.Enabled {
			err = s.server.ListenAndServeTLS(cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("main server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server...")
	case runErr = <-errCh:
		s.logger.Error("Server failed", zap.Error(runErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return errors.Join(runErr, s.Shutdown(shutdownCtx))
}

// Shutdown stops both listeners in parallel, destroys the view and flushes
// traces.
func (s *Server) Shutdown(ctx context.Context) error {
	s.metrics.SetHealthStatus(false)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	stop := func(name string, srv *http.Server) {
		if srv == nil {
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error("Failed to shutdown "+name, zap.Error(err))
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s shutdown: %w", name, err))
				mu.Unlock()
			}
		}()
	}
	stop("main server", s.server)
	stop("metrics server", s.metricsServer)
	wg.Wait()

	s.rateLimiter.Close()
	s.view.Destroy()
	if err := s.tracer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
	}
	_ = s.logger.Sync()

	return errors.Join(errs...)
}

func (s *Server) trackConnections(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metrics.ActiveConnections.Inc()
	case http.StateClosed, http.StateHijacked:
		s.metrics.ActiveConnections.Dec()
	}
}

func (s *Server) currentConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}
