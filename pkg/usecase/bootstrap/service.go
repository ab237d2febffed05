// pkg/usecase/bootstrap/service.go

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/damianoneill/go-pipeline/pkg/adapter/middleware"
	domaincache "github.com/damianoneill/go-pipeline/pkg/domain/cache"
	domainconfig "github.com/damianoneill/go-pipeline/pkg/domain/config"
	domaindb "github.com/damianoneill/go-pipeline/pkg/domain/database"
	domainhttp "github.com/damianoneill/go-pipeline/pkg/domain/http"
	domainlog "github.com/damianoneill/go-pipeline/pkg/domain/logging"
	domainmetrics "github.com/damianoneill/go-pipeline/pkg/domain/metrics"
	"github.com/damianoneill/go-pipeline/pkg/domain/pipeline"
	domaintracing "github.com/damianoneill/go-pipeline/pkg/domain/tracing"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ServerHooks provides hooks for testing server lifecycle
type ServerHooks struct {
	ListenAndServe func() error                // Optional hook for testing server startup
	Shutdown       func(context.Context) error // Optional hook for testing server shutdown
}

// Service represents a bootstrapped application: its configuration,
// collaborators and the middleware stack in front of its router.
type Service struct {
	logger   domainlog.Logger
	config   domainconfig.MaskedStore
	settings *domainconfig.Settings
	router   domainhttp.Router
	tracer   domaintracing.Provider
	metrics  domainmetrics.Collector
	cache    domaincache.Store
	pool     domaindb.Pool

	keys      *middleware.KeyGenerator
	silenced  *middleware.PathMatcher
	cleaner   *middleware.BacktraceCleaner
	callbacks *middleware.Callbacks
	registry  *pipeline.Registry

	mu         sync.Mutex
	directives []pipeline.Directive
	stack      *pipeline.Stack
	handler    http.Handler

	startTime time.Time
	server    *http.Server
	deps      Dependencies
	hooks     *ServerHooks // Optional test hooks
	opts      Options
}

// NewService creates a new bootstrap service with all domain capabilities.
// The middleware stack is assembled later, on the first call to Boot.
func NewService(opts Options, deps Dependencies, hooks *ServerHooks) (*Service, error) {
	if err := validateOptions(&opts); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := validateDependencies(deps); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}

	svc := &Service{
		deps:      deps,
		startTime: time.Now(),
		hooks:     hooks,
		opts:      opts,
	}

	if err := svc.initConfig(opts); err != nil {
		return nil, err
	}

	if err := svc.initLogger(opts); err != nil {
		return nil, err
	}

	if err := svc.initTracing(opts); err != nil {
		return nil, err
	}

	if err := svc.initMetrics(opts); err != nil {
		return nil, err
	}

	if err := svc.initCache(); err != nil {
		return nil, err
	}

	if err := svc.initDatabase(); err != nil {
		return nil, err
	}

	if err := svc.initRouter(opts); err != nil {
		return nil, err
	}

	svc.initMiddleware()

	return svc, nil
}

// LoadServerConfig loads server configuration from the config store
func (s *Service) LoadServerConfig() (ServerConfig, error) {
	var cfg ServerConfig
	var ok bool

	cfg.Port, ok = s.config.GetInt("server.http.port")
	if !ok {
		return cfg, fmt.Errorf("server port not configured")
	}

	cfg.ReadTimeout, ok = s.config.GetDuration("server.http.read_timeout")
	if !ok {
		cfg.ReadTimeout = 15 * time.Second
	}

	cfg.WriteTimeout, ok = s.config.GetDuration("server.http.write_timeout")
	if !ok {
		cfg.WriteTimeout = 15 * time.Second
	}

	cfg.IdleTimeout, _ = s.config.GetDuration("server.http.idle_timeout")

	return cfg, nil
}

// createServer creates a new HTTP server with the given configuration
func (s *Service) createServer(cfg ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Port),
		Handler:        handler,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: s.opts.Server.MaxHeaderSize,
		TLSConfig:      s.opts.Server.TLSConfig,
	}
}

// Start boots the middleware stack and serves it until Shutdown.
func (s *Service) Start() error {
	handler, err := s.Boot()
	if err != nil {
		return err
	}

	cfg, err := s.LoadServerConfig()
	if err != nil {
		return fmt.Errorf("loading server config: %w", err)
	}

	server := s.createServer(cfg, handler)
	if s.opts.Server.PreStart != nil {
		if err := s.opts.Server.PreStart(server); err != nil {
			return fmt.Errorf("pre-start hook: %w", err)
		}
	}

	s.mu.Lock()
	s.server = server
	s.mu.Unlock()

	s.logger.InfoWith("Starting server", domainlog.Fields{
		"address": server.Addr,
		"tls":     s.opts.Server.TLSCertFile != "",
	})

	// Use test hook if provided, otherwise use standard ListenAndServe
	listenAndServe := server.ListenAndServe
	if s.opts.Server.TLSCertFile != "" {
		listenAndServe = func() error {
			return server.ListenAndServeTLS(s.opts.Server.TLSCertFile, s.opts.Server.TLSKeyFile)
		}
	}
	if s.hooks != nil && s.hooks.ListenAndServe != nil {
		listenAndServe = s.hooks.ListenAndServe
	}

	if err := listenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully stops the server and releases the service's
// collaborators.
func (s *Service) Shutdown(ctx context.Context) error {
	s.logger.Info("Starting graceful shutdown")

	ctx, cancel := context.WithTimeout(ctx, s.opts.Server.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	server := s.server
	s.mu.Unlock()

	var shutdown func(context.Context) error
	if server != nil {
		shutdown = server.Shutdown
	}
	if s.hooks != nil && s.hooks.Shutdown != nil {
		shutdown = s.hooks.Shutdown
	}

	if shutdown != nil {
		if err := shutdown(ctx); err != nil {
			s.logger.ErrorWith("Shutdown error", domainlog.Fields{
				"error": err.Error(),
			})
			return fmt.Errorf("server shutdown: %w", err)
		}
	}

	if s.pool != nil {
		s.pool.Close()
	}

	if s.metrics != nil {
		if err := s.metrics.Close(); err != nil {
			s.logger.WarnWith("Metrics collector close error", domainlog.Fields{
				"error": err.Error(),
			})
		}
	}

	if s.tracer != nil {
		if err := s.tracer.Shutdown(ctx); err != nil {
			s.logger.ErrorWith("Tracer shutdown error", domainlog.Fields{
				"error": err.Error(),
			})
			return fmt.Errorf("tracer shutdown: %w", err)
		}
	}

	s.logger.Info("Server stopped")
	_ = s.logger.Sync()
	return nil
}

// Router returns the service's router, the terminal handler of the stack
func (s *Service) Router() domainhttp.Router {
	return s.router
}

// Config returns the service's configuration store
func (s *Service) Config() domainconfig.MaskedStore {
	return s.config
}

// Settings returns the validated settings the stack is assembled from
func (s *Service) Settings() *domainconfig.Settings {
	return s.settings
}

// Logger returns the service's logger
func (s *Service) Logger() domainlog.Logger {
	return s.logger
}

// Cache returns the configured cache store
func (s *Service) Cache() domaincache.Store {
	return s.cache
}

// Pool returns the database pool, or nil when the database framework is
// not enabled.
func (s *Service) Pool() domaindb.Pool {
	return s.pool
}

// Callbacks returns the hooks run by the callbacks middleware.
func (s *Service) Callbacks() *middleware.Callbacks {
	return s.callbacks
}

// BacktraceCleaner returns the cleaner show_exceptions logs through. Add
// silencers before serving requests.
func (s *Service) BacktraceCleaner() *middleware.BacktraceCleaner {
	return s.cleaner
}

// Registry returns the middleware that config directives can name.
func (s *Service) Registry() *pipeline.Registry {
	return s.registry
}

// validateOptions ensures all required options are set and defaults are applied
func validateOptions(opts *Options) error {
	if opts.ServiceName == "" {
		return fmt.Errorf("service name is required")
	}

	// Set defaults
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = opts.ServiceName
	}
	if opts.LogLevel == "" {
		opts.LogLevel = domainlog.InfoLevel
	}
	if opts.Server.ShutdownTimeout == 0 {
		opts.Server.ShutdownTimeout = 15 * time.Second
	}
	if opts.Server.ReadTimeout == 0 {
		opts.Server.ReadTimeout = 15 * time.Second
	}
	if opts.Server.WriteTimeout == 0 {
		opts.Server.WriteTimeout = 15 * time.Second
	}
	if opts.Server.IdleTimeout == 0 {
		opts.Server.IdleTimeout = 60 * time.Second
	}
	if opts.Server.Port == 0 {
		opts.Server.Port = 8080
	}
	if opts.TracingSampleRate == 0 {
		opts.TracingSampleRate = 1.0
	}
	if (opts.Server.TLSCertFile == "") != (opts.Server.TLSKeyFile == "") {
		return fmt.Errorf("TLS requires both a certificate and a key file")
	}

	return nil
}

func validateDependencies(deps Dependencies) error {
	switch {
	case deps.ConfigFactory == nil:
		return fmt.Errorf("config factory is required")
	case deps.LoggerFactory == nil:
		return fmt.Errorf("logger factory is required")
	case deps.RouterFactory == nil:
		return fmt.Errorf("router factory is required")
	case deps.CacheFactory == nil:
		return fmt.Errorf("cache factory is required")
	}
	return nil
}
