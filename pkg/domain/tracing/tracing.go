// pkg/domain/tracing/tracing.go

// Package tracing defines the tracer provider used by the tracing entry of
// the middleware stack.
package tracing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/damianoneill/go-pipeline/pkg/domain/options"
)

// Provider owns the lifecycle of trace collection and export.
type Provider interface {
	// Shutdown flushes pending spans and stops the provider.
	Shutdown(ctx context.Context) error

	IsEnabled() bool

	// Middleware starts a server span named operation for every request.
	// A disabled provider returns a pass-through.
	Middleware(operation string) func(http.Handler) http.Handler
}

// ExporterType defines the type of OpenTelemetry exporter to use.
type ExporterType string

const (
	// HTTPExporter sends spans with OTLP over HTTP
	HTTPExporter ExporterType = "http"

	// GRPCExporter sends spans with OTLP over gRPC
	GRPCExporter ExporterType = "grpc"

	// NoopExporter disables tracing
	NoopExporter ExporterType = "noop"
)

// Propagation formats.
const (
	PropagatorTraceContext = "tracecontext"
	PropagatorBaggage      = "baggage"
)

// Options configures the tracer provider.
type Options struct {
	ServiceName    string
	ServiceVersion string

	// CollectorEndpoint is host:port of the OpenTelemetry collector
	CollectorEndpoint string

	// ExporterType defaults to HTTPExporter
	ExporterType ExporterType

	// Headers are added to OTLP requests (e.g. for authentication)
	Headers map[string]string

	// Insecure disables TLS for the exporter connection
	Insecure bool

	// PropagatorTypes defaults to tracecontext and baggage
	PropagatorTypes []string

	// SamplingRate is the probability of sampling a trace, 0.0 to 1.0
	SamplingRate float64
}

// Option is a function that modifies Options
type Option = options.Option[Options]

// Factory creates configured Provider instances
type Factory interface {
	NewProvider(opts ...Option) (Provider, error)
}

// WithServiceName sets the service name for span attribution
func WithServiceName(name string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.ServiceName = name
		return nil
	})
}

// WithServiceVersion sets the service version for span attribution
func WithServiceVersion(version string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.ServiceVersion = version
		return nil
	})
}

// WithCollectorEndpoint sets the OpenTelemetry collector endpoint
func WithCollectorEndpoint(endpoint string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.CollectorEndpoint = endpoint
		return nil
	})
}

// WithExporterType sets the type of exporter to use
func WithExporterType(exporterType ExporterType) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.ExporterType = exporterType
		return nil
	})
}

// WithEndpointURL configures exporter, endpoint and TLS from a single URL as
// written in the observability.tracing_endpoint setting:
//
//	http://collector:4318   OTLP/HTTP without TLS
//	https://collector:4318  OTLP/HTTP
//	grpc://collector:4317   OTLP/gRPC without TLS
//	grpcs://collector:4317  OTLP/gRPC
//	noop://                 tracing disabled
//
// A bare host:port is treated as http.
func WithEndpointURL(raw string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parsing tracing endpoint: %w", err)
		}

		switch u.Scheme {
		case "http":
			o.ExporterType, o.Insecure = HTTPExporter, true
		case "https":
			o.ExporterType, o.Insecure = HTTPExporter, false
		case "grpc":
			o.ExporterType, o.Insecure = GRPCExporter, true
		case "grpcs":
			o.ExporterType, o.Insecure = GRPCExporter, false
		case "noop":
			o.ExporterType = NoopExporter
			return nil
		default:
			return fmt.Errorf("unsupported tracing endpoint scheme %q", u.Scheme)
		}

		if u.Host == "" {
			return fmt.Errorf("tracing endpoint %q has no host", raw)
		}
		o.CollectorEndpoint = u.Host
		return nil
	})
}

// WithHeaders sets headers to be included in OTLP requests
func WithHeaders(headers map[string]string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.Headers = headers
		return nil
	})
}

// WithInsecure sets whether to disable TLS
func WithInsecure(insecure bool) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		o.Insecure = insecure
		return nil
	})
}

// WithPropagatorTypes sets the context propagation formats to support
func WithPropagatorTypes(types []string) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		for _, t := range types {
			if t != PropagatorTraceContext && t != PropagatorBaggage {
				return fmt.Errorf("unsupported propagator %q", t)
			}
		}
		o.PropagatorTypes = types
		return nil
	})
}

// WithSamplingRate sets the trace sampling probability
// rate must be between 0.0 and 1.0
func WithSamplingRate(rate float64) Option {
	return options.OptionFunc[Options](func(o *Options) error {
		if rate < 0.0 || rate > 1.0 {
			return fmt.Errorf("sampling rate must be between 0.0 and 1.0")
		}
		o.SamplingRate = rate
		return nil
	})
}
