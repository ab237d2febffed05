package middleware

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
)

// Sendfile header variations understood by front-end servers.
const (
	XSendfile         = "X-Sendfile"
	XAccelRedirect    = "X-Accel-Redirect"
	XLighttpdSendfile = "X-LIGHTTPD-send-file"
)

type sendfileKey struct{}

type sendfileConfig struct {
	header   string
	mappings string
}

// Sendfile lets handlers hand file delivery to the front-end server. Header
// is the configured variation; a request may pick one with X-Sendfile-Type.
// For X-Accel-Redirect, X-Accel-Mapping ("internal=external,...") rewrites
// the path.
type Sendfile struct {
	Header string
}

func (m *Sendfile) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	cfg := sendfileConfig{
		header:   m.Header,
		mappings: r.Header.Get("X-Accel-Mapping"),
	}
	if t := r.Header.Get("X-Sendfile-Type"); t != "" {
		cfg.header = t
	}
	ctx := context.WithValue(r.Context(), sendfileKey{}, cfg)
	next.ServeHTTP(w, r.WithContext(ctx))
}

// SendFile delivers the file at path. Behind Sendfile with a variation set it
// only writes the header; otherwise it serves the file itself.
func SendFile(w http.ResponseWriter, r *http.Request, path string) {
	cfg, _ := r.Context().Value(sendfileKey{}).(sendfileConfig)

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	switch cfg.header {
	case XSendfile, XLighttpdSendfile:
		w.Header().Set(cfg.header, abs)
	case XAccelRedirect:
		w.Header().Set(cfg.header, accelMapped(abs, cfg.mappings))
	default:
		http.ServeFile(w, r, path)
		return
	}
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(http.StatusOK)
}

func accelMapped(path, mappings string) string {
	for _, m := range strings.Split(mappings, ",") {
		internal, external, ok := strings.Cut(strings.TrimSpace(m), "=")
		if !ok || internal == "" {
			continue
		}
		if strings.HasPrefix(path, internal) {
			return external + strings.TrimPrefix(path, internal)
		}
	}
	return path
}
