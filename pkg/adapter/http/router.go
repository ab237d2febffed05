// Package http provides the chi-based terminal router wrapped by the
// middleware stack.
package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	domainhttp "github.com/damianoneill/go-pipeline/pkg/domain/http"
	"github.com/damianoneill/go-pipeline/pkg/domain/logging"
	"github.com/damianoneill/go-pipeline/pkg/domain/options"
)

var _ domainhttp.Factory = (*Factory)(nil)

// Router implements the domain Router interface using Chi
type Router struct {
	chi.Router
	opts domainhttp.RouterOptions
}

// Factory creates Chi-based router instances
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

// NewRouter implements the domain Factory interface
func (f *Factory) NewRouter(opts ...domainhttp.Option) (domainhttp.Router, error) {
	ro := domainhttp.RouterOptions{
		ProbeHandlers: domainhttp.DefaultProbeHandlers(),
		Logger:        logging.Nop{},
	}
	if err := options.Apply(&ro, opts...); err != nil {
		return nil, fmt.Errorf("applying router option: %w", err)
	}
	if ro.ServiceName == "" {
		return nil, fmt.Errorf("service name is required")
	}

	r := &Router{
		Router: chi.NewRouter(),
		opts:   ro,
	}
	r.configureRoutes()
	return r, nil
}

// configureRoutes mounts the internal endpoints
func (r *Router) configureRoutes() {
	internal := chi.NewRouter()

	internal.Get("/health", r.probeHandler(r.opts.ProbeHandlers.LivenessCheck))
	internal.Get("/ready", r.probeHandler(r.opts.ProbeHandlers.ReadinessCheck))
	internal.Get("/startup", r.probeHandler(r.opts.ProbeHandlers.StartupCheck))

	if r.opts.LogLevelHandler != nil {
		internal.Handle("/logging", r.opts.LogLevelHandler)
	}
	if r.opts.ConfigHandler != nil {
		internal.Handle("/config", r.opts.ConfigHandler)
	}

	r.Mount("/internal", internal)

	if r.opts.Metrics != nil {
		r.Handle("/metrics", r.opts.Metrics.Handler())
	}
}

func (r *Router) probeHandler(check domainhttp.ProbeCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := check()
		if err := writeProbeResponse(w, resp); err != nil {
			r.opts.Logger.ErrorWith("Failed to write probe response", logging.Fields{
				"error": err.Error(),
			})
		}
	}
}

// writeProbeResponse answers 503 for any status other than "ok"
func writeProbeResponse(w http.ResponseWriter, resp domainhttp.ProbeResponse) error {
	w.Header().Set("Content-Type", "application/json")

	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	return json.NewEncoder(w).Encode(resp)
}
