// pkg/adapter/metrics/prometheus_test.go
package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/go-pipeline/pkg/domain/metrics"
)

func TestPrometheusFactory(t *testing.T) {
	tests := []struct {
		name    string
		options []metrics.Option
	}{
		{
			name: "creates collector with default options",
			options: []metrics.Option{
				metrics.WithServiceName("test-service"),
			},
		},
		{
			name: "creates collector with custom options",
			options: []metrics.Option{
				metrics.WithServiceName("custom-service"),
				metrics.WithLabels(map[string]string{"environment": "test"}),
				metrics.WithBuckets([]float64{0.1, 0.5, 1.0}),
				metrics.WithSubsystem("pipeline"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			collector, err := NewFactory(reg).NewCollector(tt.options...)
			require.NoError(t, err)

			collector.CollectRequestMetrics(http.MethodGet, "/test", http.StatusOK, 0.1)

			c := collector.(*prometheusCollector)
			assert.Equal(t, 1.0, testutil.ToFloat64(c.requestsTotal.WithLabelValues(http.MethodGet, "/test", "200")))
			assert.NoError(t, collector.Close())

			families, err := reg.Gather()
			require.NoError(t, err)
			assert.Empty(t, families)
		})
	}
}

func TestPrometheusCollector_Errors(t *testing.T) {
	collector, err := NewFactory(nil).NewCollector(metrics.WithServiceName("test"))
	require.NoError(t, err)
	defer collector.Close()

	collector.CollectRequestMetrics(http.MethodGet, "/ok", http.StatusOK, 0.01)
	collector.CollectRequestMetrics(http.MethodGet, "/boom", http.StatusInternalServerError, 0.01)

	c := collector.(*prometheusCollector)
	assert.Equal(t, 2, testutil.CollectAndCount(c.requestsTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(c.errorsTotal))
}

func TestPrometheusCollector_RecordStack(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewFactory(reg).NewCollector(metrics.WithServiceName("test"))
	require.NoError(t, err)
	defer collector.Close()

	collector.RecordStack([]string{"static", "lock", "runtime"})
	collector.RecordStack([]string{"runtime", "logger"})

	c := collector.(*prometheusCollector)
	assert.Equal(t, 2, testutil.CollectAndCount(c.stack))

	expected := `
# HELP middleware_stack_entry Middleware in the booted stack, by position
# TYPE middleware_stack_entry gauge
middleware_stack_entry{name="logger",position="1",service="test"} 1
middleware_stack_entry{name="runtime",position="0",service="test"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "middleware_stack_entry"))
}

func TestPrometheusCollector_Handler(t *testing.T) {
	collector, err := NewFactory(nil).NewCollector(metrics.WithServiceName("test"))
	require.NoError(t, err)
	defer collector.Close()

	collector.CollectRequestMetrics(http.MethodPost, "/orders", http.StatusCreated, 0.2)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="POST",path="/orders",service="test",status="201"} 1`)
}

func TestPrometheusCollector_Concurrency(t *testing.T) {
	collector, err := NewFactory(nil).NewCollector(metrics.WithServiceName("concurrent-test"))
	require.NoError(t, err)
	defer collector.Close()

	const goroutines = 10
	const iterations = 100

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				collector.CollectRequestMetrics(http.MethodGet, "/test", http.StatusOK, float64(j)*0.1)
			}
		}()
	}
	wg.Wait()

	c := collector.(*prometheusCollector)
	assert.Equal(t, float64(goroutines*iterations), testutil.ToFloat64(c.requestsTotal.WithLabelValues(http.MethodGet, "/test", "200")))
}

func TestPrometheusFactory_InvalidOptions(t *testing.T) {
	tests := []struct {
		name          string
		setupRegistry func(reg *prometheus.Registry)
		options       []metrics.Option
		wantErrMsg    string
	}{
		{
			name:       "fails with empty service name",
			options:    []metrics.Option{metrics.WithServiceName("")},
			wantErrMsg: "service name is required",
		},
		{
			name: "fails with invalid bucket values",
			options: []metrics.Option{
				metrics.WithServiceName("test"),
				metrics.WithBuckets([]float64{2.0, 1.0}),
			},
			wantErrMsg: "buckets must be in increasing order",
		},
		{
			name: "fails with duplicate registration",
			setupRegistry: func(reg *prometheus.Registry) {
				reg.MustRegister(prometheus.NewCounterVec(
					prometheus.CounterOpts{Name: "http_requests_total", Help: "taken"},
					[]string{"method", "path", "status"},
				))
			},
			options:    []metrics.Option{metrics.WithServiceName("test")},
			wantErrMsg: "registering collector",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			if tt.setupRegistry != nil {
				tt.setupRegistry(reg)
			}

			collector, err := NewFactory(reg).NewCollector(tt.options...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErrMsg)
			assert.Nil(t, collector)
		})
	}
}
