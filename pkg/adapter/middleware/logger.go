package middleware

import (
	"fmt"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/damianoneill/go-pipeline/pkg/domain/logging"
)

// RequestLogger logs the start and completion of every request that does not
// match a silenced path.
type RequestLogger struct {
	Logger   logging.Logger
	Silenced *PathMatcher
}

func (m *RequestLogger) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if m.Silenced.Match(r.URL.Path) {
		next.ServeHTTP(w, r)
		return
	}

	start := time.Now()
	log := m.Logger.WithContext(r.Context())
	fields := logging.Fields{
		"method":    r.Method,
		"path":      r.URL.Path,
		"remote_ip": r.RemoteAddr,
	}
	if id := chimiddleware.GetReqID(r.Context()); id != "" {
		fields["request_id"] = id
	}
	log.InfoWith(fmt.Sprintf("Started %s %q", r.Method, r.URL.Path), fields)

	ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
	defer func() {
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		log.InfoWith(fmt.Sprintf("Completed %d %s", status, http.StatusText(status)), logging.Fields{
			"status":   status,
			"size":     ww.BytesWritten(),
			"duration": time.Since(start).String(),
		})
	}()

	next.ServeHTTP(ww, r)
}
