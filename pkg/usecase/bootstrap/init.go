// pkg/usecase/bootstrap/init.go

package bootstrap

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/damianoneill/go-pipeline/pkg/adapter/middleware"
	domaincache "github.com/damianoneill/go-pipeline/pkg/domain/cache"
	domainconfig "github.com/damianoneill/go-pipeline/pkg/domain/config"
	domainhttp "github.com/damianoneill/go-pipeline/pkg/domain/http"
	domainlog "github.com/damianoneill/go-pipeline/pkg/domain/logging"
	domainmetrics "github.com/damianoneill/go-pipeline/pkg/domain/metrics"
	domaintracing "github.com/damianoneill/go-pipeline/pkg/domain/tracing"
)

const databasePingTimeout = 2 * time.Second

func (s *Service) initConfig(opts Options) error {
	defaults := domainconfig.DefaultSettings()
	maps.Copy(defaults, map[string]interface{}{
		"server.http.port":          opts.Server.Port,
		"server.http.read_timeout":  opts.Server.ReadTimeout,
		"server.http.write_timeout": opts.Server.WriteTimeout,
		"server.http.idle_timeout":  opts.Server.IdleTimeout,
		"logging.level":             string(opts.LogLevel),
	})
	maps.Copy(defaults, opts.ConfigDefaults)

	cfgOpts := []domainconfig.Option{
		domainconfig.WithEnvPrefix(opts.EnvPrefix),
		domainconfig.WithDefaults(defaults),
	}
	if opts.ConfigFile != "" {
		cfgOpts = append(cfgOpts, domainconfig.WithConfigFile(opts.ConfigFile))
	}

	store, err := s.deps.ConfigFactory.NewStore(cfgOpts...)
	if err != nil {
		return fmt.Errorf("creating config store: %w", err)
	}
	s.config = store

	settings, err := domainconfig.Load(store)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	s.settings = settings
	return nil
}

func (s *Service) initLogger(opts Options) error {
	level := opts.LogLevel
	if name, ok := s.config.GetString("logging.level"); ok && name != "" {
		level = domainlog.ParseLevel(name)
	}

	fields := domainlog.Fields{"version": opts.Version}
	maps.Copy(fields, opts.LogFields)

	logger, err := s.deps.LoggerFactory.NewLogger(
		domainlog.WithLevel(level),
		domainlog.WithServiceName(opts.ServiceName),
		domainlog.WithFields(fields),
	)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	s.logger = logger
	return nil
}

func (s *Service) initTracing(opts Options) error {
	endpoint := s.settings.Observability.TracingEndpoint
	if endpoint == "" {
		return nil
	}
	if s.deps.TracerFactory == nil {
		return fmt.Errorf("tracing endpoint %q configured without a tracer factory", endpoint)
	}

	tracingOpts := []domaintracing.Option{
		domaintracing.WithServiceName(opts.ServiceName),
		domaintracing.WithServiceVersion(opts.Version),
		domaintracing.WithEndpointURL(endpoint),
		domaintracing.WithSamplingRate(opts.TracingSampleRate),
	}
	if len(opts.TracingPropagators) > 0 {
		tracingOpts = append(tracingOpts, domaintracing.WithPropagatorTypes(opts.TracingPropagators))
	}

	provider, err := s.deps.TracerFactory.NewProvider(tracingOpts...)
	if err != nil {
		return fmt.Errorf("creating tracer: %w", err)
	}
	s.tracer = provider
	return nil
}

func (s *Service) initMetrics(opts Options) error {
	if !s.settings.Observability.Metrics {
		return nil
	}
	if s.deps.MetricsFactory == nil {
		return fmt.Errorf("metrics enabled without a metrics factory")
	}

	collector, err := s.deps.MetricsFactory.NewCollector(
		domainmetrics.WithServiceName(opts.ServiceName),
		domainmetrics.WithLabels(map[string]string{"version": opts.Version}),
	)
	if err != nil {
		return fmt.Errorf("creating metrics collector: %w", err)
	}
	s.metrics = collector
	return nil
}

func (s *Service) initCache() error {
	store, err := s.deps.CacheFactory.NewStore(
		domaincache.WithKind(s.settings.CacheStore),
		domaincache.WithPath(s.settings.CachePath),
	)
	if err != nil {
		return fmt.Errorf("creating %s: %w", s.settings.CacheStore, err)
	}
	s.cache = store
	return nil
}

func (s *Service) initDatabase() error {
	if !s.settings.HasFramework(domainconfig.FrameworkDatabase) {
		return nil
	}
	if s.deps.DatabaseFactory == nil {
		return fmt.Errorf("database framework enabled without a database factory")
	}

	pool, err := s.deps.DatabaseFactory.NewPool(context.Background(), s.settings.Database.URL, s.settings.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("opening database pool: %w", err)
	}
	s.pool = pool
	return nil
}

func (s *Service) initRouter(opts Options) error {
	routerOpts := []domainhttp.Option{
		domainhttp.WithService(opts.ServiceName, opts.Version),
		domainhttp.WithLogger(s.logger),
		domainhttp.WithProbeHandlers(s.createProbeHandlers(opts)),
	}

	if s.metrics != nil {
		routerOpts = append(routerOpts, domainhttp.WithMetrics(s.metrics))
	}

	if opts.EnableLogConfig {
		if configurable, ok := s.logger.(domainlog.RuntimeConfigurable); ok {
			routerOpts = append(routerOpts, domainhttp.WithLogLevelHandler(configurable.GetConfigHandler()))
		}
	}

	if opts.EnableConfigViewer {
		routerOpts = append(routerOpts, domainhttp.WithConfigHandler(s.config.GetConfigHandler(nil)))
	}

	router, err := s.deps.RouterFactory.NewRouter(routerOpts...)
	if err != nil {
		return fmt.Errorf("creating router: %w", err)
	}
	s.router = router
	return nil
}

func (s *Service) initMiddleware() {
	s.keys = middleware.NewKeyGenerator(s.settings.SecretToken)
	s.silenced = middleware.NewPathMatcher(s.settings.Observability.SilencedPaths)
	s.cleaner = middleware.NewBacktraceCleaner()
	s.callbacks = &middleware.Callbacks{}
	s.registry = newRegistry(s)
}

// createProbeHandlers creates probe handlers for Kubernetes health checks
func (s *Service) createProbeHandlers(opts Options) *domainhttp.ProbeHandlers {
	readiness := func() domainhttp.ProbeResponse {
		return domainhttp.NewProbeResponse("ok", map[string]interface{}{
			"startup_time": s.startTime.Format(time.RFC3339),
		})
	}
	if s.pool != nil && s.settings.Database.URL != "" {
		readiness = domainhttp.PingCheck("database", databasePingTimeout, s.pool.Ping)
	}

	return &domainhttp.ProbeHandlers{
		LivenessCheck: func() domainhttp.ProbeResponse {
			return domainhttp.NewProbeResponse("ok", map[string]interface{}{
				"version": opts.Version,
				"uptime":  time.Since(s.startTime).String(),
			})
		},
		ReadinessCheck: readiness,
		StartupCheck: func() domainhttp.ProbeResponse {
			if !s.Booted() {
				return domainhttp.NewProbeResponse("starting", nil)
			}
			return domainhttp.NewProbeResponse("ok", nil)
		},
	}
}
