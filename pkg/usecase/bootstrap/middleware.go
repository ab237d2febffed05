// pkg/usecase/bootstrap/middleware.go

package bootstrap

import (
	"errors"
	"fmt"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/damianoneill/go-pipeline/pkg/adapter/database"
	"github.com/damianoneill/go-pipeline/pkg/adapter/middleware"
	domaincache "github.com/damianoneill/go-pipeline/pkg/domain/cache"
	domainconfig "github.com/damianoneill/go-pipeline/pkg/domain/config"
	domainlog "github.com/damianoneill/go-pipeline/pkg/domain/logging"
	"github.com/damianoneill/go-pipeline/pkg/domain/pipeline"
)

// Names of the default stack entries.
const (
	EntryHTTPCache            = "http_cache"
	EntryStatic               = "static"
	EntryLock                 = "lock"
	EntryLocalCache           = "local_cache"
	EntryRuntime              = "runtime"
	EntryRequestID            = "request_id"
	EntryTracing              = "tracing"
	EntryMetrics              = "metrics"
	EntryLogger               = "logger"
	EntryShowExceptions       = "show_exceptions"
	EntryRemoteIP             = "remote_ip"
	EntrySendfile             = "sendfile"
	EntryCallbacks            = "callbacks"
	EntryConnectionManagement = "connection_management"
	EntryQueryCache           = "query_cache"
	EntryCookies              = "cookies"
	EntrySession              = "session"
	EntryFlash                = "flash"
	EntryParamsParser         = "params_parser"
	EntryMethodOverride       = "method_override"
	EntryHead                 = "head"
	EntryBestStandardsSupport = "best_standards_support"
)

var (
	errTracingDisabled  = errors.New("tracing requires observability.tracing_endpoint")
	errMetricsDisabled  = errors.New("metrics requires observability.metrics")
	errNoDatabase       = errors.New("database framework is not enabled")
	errNoLocalCache     = errors.New("cache store has no local cache")
	errSessionsDisabled = errors.New("session store is disabled")
)

// DefaultRules is the table the default stack is assembled from. Rows are
// evaluated in order, so request_id, tracing and metrics land before logger
// in that order, and http_cache is placed last at the very front.
func DefaultRules() []pipeline.Rule[*Service] {
	return []pipeline.Rule[*Service]{
		{
			Name: EntryStatic,
			When: func(s *Service) bool { return s.settings.ServeStaticAssets },
			New: func(s *Service) (pipeline.Middleware, error) {
				return &middleware.Static{Root: s.settings.StaticRoot}, nil
			},
		},
		{
			Name: EntryLock,
			When: func(s *Service) bool { return !s.settings.AllowConcurrency },
			New: func(*Service) (pipeline.Middleware, error) {
				return &middleware.Lock{}, nil
			},
		},
		{
			Name: EntryLocalCache,
			When: func(s *Service) bool {
				_, ok := s.cache.(domaincache.MiddlewareProvider)
				return ok
			},
			New: newLocalCache,
		},
		{
			Name: EntryRuntime,
			New: func(*Service) (pipeline.Middleware, error) {
				return middleware.NewRuntime(), nil
			},
		},
		{
			Name: EntryLogger,
			New: func(s *Service) (pipeline.Middleware, error) {
				return &middleware.RequestLogger{Logger: s.logger.Named("request"), Silenced: s.silenced}, nil
			},
		},
		{
			Name: EntryShowExceptions,
			When: func(s *Service) bool { return s.settings.ActionDispatch.ShowExceptions },
			New: func(s *Service) (pipeline.Middleware, error) {
				return &middleware.ShowExceptions{Logger: s.logger.Named("exceptions"), Cleaner: s.cleaner}, nil
			},
		},
		{
			Name: EntryRemoteIP,
			New: func(*Service) (pipeline.Middleware, error) {
				return pipeline.Wrap(chimiddleware.RealIP), nil
			},
		},
		{
			Name: EntrySendfile,
			New: func(s *Service) (pipeline.Middleware, error) {
				return &middleware.Sendfile{Header: s.settings.ActionDispatch.XSendfileHeader}, nil
			},
		},
		{
			Name: EntryCallbacks,
			New: func(s *Service) (pipeline.Middleware, error) {
				return s.callbacks, nil
			},
		},
		{
			Name: EntryConnectionManagement,
			When: usesDatabase,
			New: func(s *Service) (pipeline.Middleware, error) {
				if s.pool == nil {
					return nil, errNoDatabase
				}
				return &database.ConnectionManagement{Pool: s.pool}, nil
			},
		},
		{
			Name: EntryQueryCache,
			When: usesDatabase,
			New: func(*Service) (pipeline.Middleware, error) {
				return database.QueryCache{}, nil
			},
		},
		{
			Name: EntryCookies,
			New: func(s *Service) (pipeline.Middleware, error) {
				return middleware.NewCookies(s.keys), nil
			},
		},
		{
			Name: EntrySession,
			When: usesSessions,
			New: func(s *Service) (pipeline.Middleware, error) {
				if !s.settings.SessionEnabled() {
					return nil, errSessionsDisabled
				}
				return middleware.NewCookieStore(s.settings.Session.Key, s.keys, s.logger.Named("session")), nil
			},
		},
		{
			Name: EntryFlash,
			When: usesSessions,
			New: func(*Service) (pipeline.Middleware, error) {
				return middleware.FlashMiddleware{}, nil
			},
		},
		{
			Name: EntryParamsParser,
			New: func(s *Service) (pipeline.Middleware, error) {
				return &middleware.ParamsParser{Logger: s.logger.Named("params")}, nil
			},
		},
		{
			Name: EntryMethodOverride,
			New: func(*Service) (pipeline.Middleware, error) {
				return middleware.MethodOverride{}, nil
			},
		},
		{
			Name: EntryHead,
			New: func(*Service) (pipeline.Middleware, error) {
				return middleware.Head{}, nil
			},
		},
		{
			Name: EntryBestStandardsSupport,
			When: func(s *Service) bool { return s.settings.ActionDispatch.BestStandardsHeader() != "" },
			New: func(s *Service) (pipeline.Middleware, error) {
				return &middleware.BestStandardsSupport{Value: s.settings.ActionDispatch.BestStandardsHeader()}, nil
			},
		},
		{
			Name:     EntryRequestID,
			When:     func(s *Service) bool { return s.settings.Observability.RequestID },
			Position: pipeline.Before,
			Anchor:   EntryLogger,
			New: func(*Service) (pipeline.Middleware, error) {
				return middleware.RequestID{}, nil
			},
		},
		{
			Name:     EntryTracing,
			When:     func(s *Service) bool { return s.tracer != nil },
			Position: pipeline.Before,
			Anchor:   EntryLogger,
			New: func(s *Service) (pipeline.Middleware, error) {
				if s.tracer == nil {
					return nil, errTracingDisabled
				}
				return pipeline.Wrap(s.tracer.Middleware(s.opts.ServiceName)), nil
			},
		},
		{
			Name:     EntryMetrics,
			When:     func(s *Service) bool { return s.metrics != nil },
			Position: pipeline.Before,
			Anchor:   EntryLogger,
			New: func(s *Service) (pipeline.Middleware, error) {
				if s.metrics == nil {
					return nil, errMetricsDisabled
				}
				return &middleware.Metrics{Collector: s.metrics, Silenced: s.silenced}, nil
			},
		},
		{
			Name:     EntryHTTPCache,
			When:     func(s *Service) bool { return s.settings.ActionController.PerformCaching },
			Position: pipeline.Prepend,
			New: func(s *Service) (pipeline.Middleware, error) {
				return &middleware.HTTPCache{Store: s.cache, Logger: s.logger.Named("http_cache")}, nil
			},
		},
	}
}

func usesDatabase(s *Service) bool {
	return s.settings.HasFramework(domainconfig.FrameworkDatabase)
}

func usesSessions(s *Service) bool {
	return s.settings.SessionEnabled()
}

func newLocalCache(s *Service) (pipeline.Middleware, error) {
	provider, ok := s.cache.(domaincache.MiddlewareProvider)
	if !ok {
		return nil, fmt.Errorf("%s: %w", s.settings.CacheStore, errNoLocalCache)
	}
	return provider.Middleware(), nil
}

// Configure queues directives applied to the default stack at boot, after
// any directives from the middleware setting. Once booted the stack is
// frozen and Configure fails with a FrozenStackError.
func (s *Service) Configure(directives ...pipeline.Directive) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stack != nil {
		name := ""
		if len(directives) > 0 {
			name = directives[0].Name
		}
		return &pipeline.FrozenStackError{Op: "configure", Name: name}
	}
	s.directives = append(s.directives, directives...)
	return nil
}

// Boot assembles the default stack from the settings, applies the
// configured directives and wraps the router. Later calls return the same
// handler.
func (s *Service) Boot() (http.Handler, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handler != nil {
		return s.handler, nil
	}

	stack, err := pipeline.Assemble(s, DefaultRules())
	if err != nil {
		return nil, fmt.Errorf("assembling middleware: %w", err)
	}

	directives := make([]pipeline.Directive, 0, len(s.settings.Middleware)+len(s.directives))
	directives = append(directives, s.settings.Middleware...)
	directives = append(directives, s.directives...)
	if err := pipeline.Apply(stack, s.registry, directives...); err != nil {
		return nil, fmt.Errorf("configuring middleware: %w", err)
	}

	handler, err := stack.Build(s.router)
	if err != nil {
		return nil, fmt.Errorf("building middleware: %w", err)
	}

	s.stack = stack
	s.handler = handler

	names := stack.Names()
	if s.metrics != nil {
		s.metrics.RecordStack(names)
	}
	s.logger.InfoWith("Middleware stack booted", domainlog.Fields{
		"middleware": names,
		"count":      len(names),
	})

	return handler, nil
}

// Handler is Boot for callers that serve the stack themselves.
func (s *Service) Handler() (http.Handler, error) {
	return s.Boot()
}

// Middleware boots the stack and returns its entry names, outermost first.
func (s *Service) Middleware() ([]string, error) {
	if _, err := s.Boot(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Names(), nil
}

// Booted reports whether the stack has been built.
func (s *Service) Booted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handler != nil
}
