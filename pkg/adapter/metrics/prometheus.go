// pkg/adapter/metrics/prometheus.go

// Package metrics provides a Prometheus implementation of the metrics domain
// interfaces.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/damianoneill/go-pipeline/pkg/domain/metrics"
	"github.com/damianoneill/go-pipeline/pkg/domain/options"
)

var _ metrics.Collector = (*prometheusCollector)(nil)

// Registry is where collectors are registered and gathered from.
// *prometheus.Registry satisfies it.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

type prometheusCollector struct {
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	stack           *prometheus.GaugeVec
	reg             Registry
	mu              sync.RWMutex
}

// PrometheusFactory creates collectors registered on a single registry.
type PrometheusFactory struct {
	reg Registry
}

// NewFactory returns a factory registering on reg. A nil reg gets a fresh
// registry so repeated boots in one process do not collide.
func NewFactory(reg Registry) *PrometheusFactory {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &PrometheusFactory{reg: reg}
}

func (f *PrometheusFactory) NewCollector(opts ...metrics.Option) (metrics.Collector, error) {
	o := metrics.DefaultOptions()
	if err := options.Apply(&o, opts...); err != nil {
		return nil, fmt.Errorf("applying option: %w", err)
	}

	if o.ServiceName == "" {
		return nil, fmt.Errorf("service name is required")
	}

	labels := prometheus.Labels{
		"service": o.ServiceName,
	}
	for k, v := range o.Labels {
		labels[k] = v
	}

	buckets := o.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			return nil, fmt.Errorf("buckets must be in increasing order: %v", buckets)
		}
	}

	requestLabels := []string{"method", "path", "status"}
	c := &prometheusCollector{
		reg: f.reg,
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem:   o.Subsystem,
				Name:        "http_request_duration_seconds",
				Help:        "HTTP request duration in seconds",
				Buckets:     buckets,
				ConstLabels: labels,
			},
			requestLabels,
		),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem:   o.Subsystem,
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests",
				ConstLabels: labels,
			},
			requestLabels,
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem:   o.Subsystem,
				Name:        "http_errors_total",
				Help:        "Total number of HTTP errors",
				ConstLabels: labels,
			},
			requestLabels,
		),
		stack: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Subsystem:   o.Subsystem,
				Name:        "middleware_stack_entry",
				Help:        "Middleware in the booted stack, by position",
				ConstLabels: labels,
			},
			[]string{"position", "name"},
		),
	}

	registered := make([]prometheus.Collector, 0, 4)
	for _, col := range c.collectors() {
		if err := c.reg.Register(col); err != nil {
			for _, done := range registered {
				c.reg.Unregister(done)
			}
			return nil, fmt.Errorf("registering collector: %w", err)
		}
		registered = append(registered, col)
	}

	return c, nil
}

func (c *prometheusCollector) collectors() []prometheus.Collector {
	return []prometheus.Collector{c.requestDuration, c.requestsTotal, c.errorsTotal, c.stack}
}

func (c *prometheusCollector) CollectRequestMetrics(method, path string, status int, duration float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}

	c.requestDuration.With(labels).Observe(duration)
	c.requestsTotal.With(labels).Inc()

	if status >= http.StatusBadRequest {
		c.errorsTotal.With(labels).Inc()
	}
}

func (c *prometheusCollector) RecordStack(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stack.Reset()
	for i, name := range names {
		c.stack.WithLabelValues(strconv.Itoa(i), name).Set(1)
	}
}

func (c *prometheusCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

func (c *prometheusCollector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, col := range c.collectors() {
		c.reg.Unregister(col)
	}
	return nil
}
