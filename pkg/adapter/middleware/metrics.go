package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/damianoneill/go-pipeline/pkg/domain/metrics"
)

// Metrics records request duration and status with Collector. Silenced paths
// are not recorded.
type Metrics struct {
	Collector metrics.Collector
	Silenced  *PathMatcher
}

func (m *Metrics) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if m.Silenced.Match(r.URL.Path) {
		next.ServeHTTP(w, r)
		return
	}

	// a chi router below reuses this route context, so the matched pattern
	// is visible here once next returns
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	start := time.Now()
	ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
	next.ServeHTTP(ww, r)

	status := ww.Status()
	if status == 0 {
		status = http.StatusOK
	}
	m.Collector.CollectRequestMetrics(r.Method, routePattern(rctx, r), status, time.Since(start).Seconds())
}

func routePattern(rctx *chi.Context, r *http.Request) string {
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return r.URL.Path
}
