// Package http defines the terminal router the middleware stack wraps: the
// application's routes plus the internal endpoints for probes, metrics,
// logging level and configuration.
package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/damianoneill/go-pipeline/pkg/domain/logging"
	"github.com/damianoneill/go-pipeline/pkg/domain/metrics"
	"github.com/damianoneill/go-pipeline/pkg/domain/options"
)

// Router is a chi.Router serving the application's routes. It is the
// terminal handler of the middleware stack.
type Router interface {
	chi.Router
}

// RouterOptions configures the internal endpoints mounted on the router.
type RouterOptions struct {
	// ServiceName and ServiceVersion are reported by the liveness probe.
	ServiceName    string
	ServiceVersion string

	// Logger reports failures writing internal responses.
	Logger logging.Logger

	// Metrics serves /metrics when set.
	Metrics metrics.Collector

	// LogLevelHandler serves /internal/logging when set.
	LogLevelHandler http.Handler

	// ConfigHandler serves /internal/config when set.
	ConfigHandler http.Handler

	// ProbeHandlers back /internal/health, /internal/ready and
	// /internal/startup.
	ProbeHandlers *ProbeHandlers
}

// Option is a function that modifies RouterOptions
type Option = options.Option[RouterOptions]

// WithService sets the service name and version.
func WithService(name, version string) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		if name == "" {
			return fmt.Errorf("service name cannot be empty")
		}
		o.ServiceName = name
		o.ServiceVersion = version
		return nil
	})
}

func WithLogger(logger logging.Logger) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		o.Logger = logger
		return nil
	})
}

// WithMetrics mounts the collector's exposition handler on /metrics.
func WithMetrics(collector metrics.Collector) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		o.Metrics = collector
		return nil
	})
}

// WithLogLevelHandler mounts h on /internal/logging.
func WithLogLevelHandler(h http.Handler) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		o.LogLevelHandler = h
		return nil
	})
}

// WithConfigHandler mounts h on /internal/config.
func WithConfigHandler(h http.Handler) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		o.ConfigHandler = h
		return nil
	})
}

func WithProbeHandlers(handlers *ProbeHandlers) Option {
	return options.OptionFunc[RouterOptions](func(o *RouterOptions) error {
		if handlers == nil {
			return fmt.Errorf("probe handlers cannot be nil")
		}
		o.ProbeHandlers = handlers
		return nil
	})
}

// Factory creates new router instances with the specified options.
type Factory interface {
	NewRouter(opts ...Option) (Router, error)
}
