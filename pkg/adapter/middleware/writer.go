// Package middleware implements the entries of the default middleware stack.
package middleware

import (
	"net/http"
	"sync"
)

// hookWriter runs before once, immediately before the response headers are
// sent. Middleware that must add headers late (runtime, cookies, session)
// wrap the writer with it and call fire after next returns, for handlers
// that never write.
type hookWriter struct {
	http.ResponseWriter
	once   sync.Once
	before func()
}

func newHookWriter(w http.ResponseWriter, before func()) *hookWriter {
	return &hookWriter{ResponseWriter: w, before: before}
}

func (h *hookWriter) fire() {
	h.once.Do(h.before)
}

func (h *hookWriter) WriteHeader(status int) {
	h.fire()
	h.ResponseWriter.WriteHeader(status)
}

func (h *hookWriter) Write(b []byte) (int, error) {
	h.fire()
	return h.ResponseWriter.Write(b)
}

func (h *hookWriter) Flush() {
	h.fire()
	if f, ok := h.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (h *hookWriter) Unwrap() http.ResponseWriter {
	return h.ResponseWriter
}
