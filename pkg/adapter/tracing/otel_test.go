package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/damianoneill/go-pipeline/pkg/domain/tracing"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		opts    []tracing.Option
		wantErr bool
	}{
		{
			name: "http collector from endpoint url",
			opts: []tracing.Option{
				tracing.WithServiceName("pipeline"),
				tracing.WithEndpointURL("http://localhost:4318"),
				tracing.WithHeaders(map[string]string{"Authorization": "Bearer token"}),
			},
		},
		{
			name: "grpc collector sampled at half",
			opts: []tracing.Option{
				tracing.WithServiceName("pipeline"),
				tracing.WithEndpointURL("grpc://localhost:4317"),
				tracing.WithSamplingRate(0.5),
			},
		},
		{
			name: "noop endpoint",
			opts: []tracing.Option{
				tracing.WithServiceName("pipeline"),
				tracing.WithEndpointURL("noop://"),
			},
		},
		{
			name:    "missing service name",
			opts:    []tracing.Option{tracing.WithExporterType(tracing.HTTPExporter)},
			wantErr: true,
		},
		{
			name: "invalid exporter type",
			opts: []tracing.Option{
				tracing.WithServiceName("pipeline"),
				tracing.WithExporterType("zipkin"),
			},
			wantErr: true,
		},
		{
			name: "unsupported endpoint scheme",
			opts: []tracing.Option{
				tracing.WithServiceName("pipeline"),
				tracing.WithEndpointURL("ftp://localhost"),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewFactory().NewProvider(tt.opts...)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, provider)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, provider)

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			err = provider.Shutdown(ctx)
			assert.NoError(t, err)
		})
	}
}

func TestProvider_Disabled(t *testing.T) {
	for _, p := range []*Provider{{enabled: false}, {enabled: true}} {
		assert.Equal(t, p.enabled, p.IsEnabled())
		assert.NoError(t, p.Shutdown(context.Background()))
	}
}

func TestProvider_Middleware(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	factory := NewFactoryWithExporter(exporter)

	provider, err := factory.NewProvider(tracing.WithServiceName("pipeline"))
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	var sawSpan bool
	handler := provider.Middleware("request")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawSpan = trace.SpanFromContext(r.Context()).SpanContext().IsValid()
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, sawSpan)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "request", spans[0].Name)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
}

func TestProvider_MiddlewareDisabled(t *testing.T) {
	provider, err := NewFactory().NewProvider(
		tracing.WithServiceName("pipeline"),
		tracing.WithExporterType(tracing.NoopExporter),
	)
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, trace.SpanFromContext(r.Context()).SpanContext().IsValid())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	provider.Middleware("request")(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
