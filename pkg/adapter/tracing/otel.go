// pkg/adapter/tracing/otel.go

// Package tracing provides an OpenTelemetry implementation of the tracing domain interfaces
package tracing

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/damianoneill/go-pipeline/pkg/domain/options"
	"github.com/damianoneill/go-pipeline/pkg/domain/tracing"
)

var _ tracing.Provider = (*Provider)(nil)

// Provider implements the domain Provider interface using OpenTelemetry
type Provider struct {
	provider    *sdktrace.TracerProvider
	propagators propagation.TextMapPropagator
	enabled     bool
}

// Factory creates OpenTelemetry-based Provider instances
type Factory struct {
	exporter sdktrace.SpanExporter
}

// NewFactory creates a factory that exports over OTLP.
func NewFactory() *Factory {
	return &Factory{}
}

// NewFactoryWithExporter creates a factory whose providers export
// synchronously to exporter, ignoring the collector settings.
func NewFactoryWithExporter(exporter sdktrace.SpanExporter) *Factory {
	return &Factory{exporter: exporter}
}

// NewProvider implements Factory.NewProvider
func (f *Factory) NewProvider(opts ...tracing.Option) (tracing.Provider, error) {
	o := &tracing.Options{
		ExporterType: tracing.HTTPExporter,
		SamplingRate: 1.0,
	}
	if err := options.Apply(o, opts...); err != nil {
		return nil, fmt.Errorf("applying option: %w", err)
	}

	if o.ServiceName == "" {
		return nil, fmt.Errorf("service name is required")
	}

	if o.ExporterType == tracing.NoopExporter {
		return &Provider{enabled: false}, nil
	}

	res, err := createResource(o)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(createSampler(o)),
	}
	if f.exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithSyncer(f.exporter))
	} else {
		exporter, err := createExporter(context.Background(), o)
		if err != nil {
			return nil, fmt.Errorf("creating exporter: %w", err)
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	props := createPropagators(o)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(props)

	return &Provider{
		provider:    tp,
		propagators: props,
		enabled:     true,
	}, nil
}

// Middleware implements Provider.Middleware
func (p *Provider) Middleware(operation string) func(http.Handler) http.Handler {
	if !p.enabled || p.provider == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, operation,
			otelhttp.WithTracerProvider(p.provider),
			otelhttp.WithPropagators(p.propagators),
		)
	}
}

// Shutdown implements Provider.Shutdown
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.enabled || p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}

// IsEnabled implements Provider.IsEnabled
func (p *Provider) IsEnabled() bool {
	return p.enabled
}

func createExporter(ctx context.Context, opts *tracing.Options) (sdktrace.SpanExporter, error) {
	switch opts.ExporterType {
	case tracing.HTTPExporter:
		httpOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(opts.CollectorEndpoint),
		}
		if opts.Insecure {
			httpOpts = append(httpOpts, otlptracehttp.WithInsecure())
		}
		if len(opts.Headers) > 0 {
			httpOpts = append(httpOpts, otlptracehttp.WithHeaders(opts.Headers))
		}
		return otlptracehttp.New(ctx, httpOpts...)

	case tracing.GRPCExporter:
		grpcOpts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(opts.CollectorEndpoint),
		}
		if opts.Insecure {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithInsecure())
		}
		if len(opts.Headers) > 0 {
			grpcOpts = append(grpcOpts, otlptracegrpc.WithHeaders(opts.Headers))
		}
		return otlptracegrpc.New(ctx, grpcOpts...)

	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", opts.ExporterType)
	}
}

func createResource(opts *tracing.Options) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(opts.ServiceName),
			semconv.ServiceVersion(opts.ServiceVersion),
		),
	)
}

func createSampler(opts *tracing.Options) sdktrace.Sampler {
	if opts.SamplingRate >= 1.0 {
		return sdktrace.AlwaysSample()
	}
	if opts.SamplingRate <= 0.0 {
		return sdktrace.NeverSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SamplingRate))
}

func createPropagators(opts *tracing.Options) propagation.TextMapPropagator {
	types := opts.PropagatorTypes
	if len(types) == 0 {
		types = []string{tracing.PropagatorTraceContext, tracing.PropagatorBaggage}
	}

	propagators := make([]propagation.TextMapPropagator, 0, len(types))
	for _, t := range types {
		switch t {
		case tracing.PropagatorTraceContext:
			propagators = append(propagators, propagation.TraceContext{})
		case tracing.PropagatorBaggage:
			propagators = append(propagators, propagation.Baggage{})
		}
	}
	return propagation.NewCompositeTextMapPropagator(propagators...)
}
