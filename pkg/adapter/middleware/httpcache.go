package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/damianoneill/go-pipeline/pkg/domain/cache"
	"github.com/damianoneill/go-pipeline/pkg/domain/logging"
)

// CacheStatusHeader reports how HTTPCache handled the request.
const CacheStatusHeader = "X-Cache"

type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// HTTPCache is a shared cache for GET and HEAD responses. Only 200
// responses marked Cache-Control: public with a max-age are stored, for
// that many seconds, and only from GET since a HEAD response carries no
// body. Requests with Cache-Control: no-cache skip the lookup.
type HTTPCache struct {
	Store  cache.Store
	Logger logging.Logger
}

func (m *HTTPCache) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(CacheStatusHeader, "pass")
		next.ServeHTTP(w, r)
		return
	}

	key := "http:" + r.URL.RequestURI()
	ctx := r.Context()

	if !strings.Contains(r.Header.Get("Cache-Control"), "no-cache") {
		raw, err := m.Store.Get(ctx, key)
		switch {
		case err == nil:
			var cached cachedResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				m.replay(w, r, cached)
				return
			}
		case !errors.Is(err, cache.ErrMiss):
			m.Logger.WarnWith("HTTP cache lookup failed", logging.Fields{"error": err.Error()})
		}
	}

	rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
	w.Header().Set(CacheStatusHeader, "miss")
	next.ServeHTTP(rec, r)

	if r.Method != http.MethodGet {
		return
	}
	ttl, ok := cacheable(rec.status, w.Header())
	if !ok {
		return
	}
	header := w.Header().Clone()
	header.Del(CacheStatusHeader)
	header.Del("Set-Cookie")

	raw, err := json.Marshal(cachedResponse{Status: rec.status, Header: header, Body: rec.body.Bytes()})
	if err == nil {
		err = m.Store.Set(ctx, key, raw, ttl)
	}
	if err != nil {
		m.Logger.WarnWith("HTTP cache store failed", logging.Fields{"error": err.Error()})
	}
}

func (m *HTTPCache) replay(w http.ResponseWriter, r *http.Request, cached cachedResponse) {
	for k, v := range cached.Header {
		w.Header()[k] = v
	}
	w.Header().Set(CacheStatusHeader, "hit")
	w.WriteHeader(cached.Status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(cached.Body)
	}
}

func cacheable(status int, h http.Header) (time.Duration, bool) {
	if status != http.StatusOK || h.Get("Set-Cookie") != "" {
		return 0, false
	}

	var public bool
	var maxAge int
	for _, directive := range strings.Split(h.Get("Cache-Control"), ",") {
		name, value, _ := strings.Cut(strings.TrimSpace(directive), "=")
		switch strings.ToLower(name) {
		case "public":
			public = true
		case "private", "no-store", "no-cache":
			return 0, false
		case "max-age", "s-maxage":
			if n, err := strconv.Atoi(value); err == nil && n > maxAge {
				maxAge = n
			}
		}
	}
	if !public || maxAge <= 0 {
		return 0, false
	}
	return time.Duration(maxAge) * time.Second, true
}

// recordingWriter copies the body while passing it through.
type recordingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *recordingWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

func (rw *recordingWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
