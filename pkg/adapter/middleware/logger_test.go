package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	logger, entries := newBufferLogger(t)
	mw := &RequestLogger{
		Logger:   logger,
		Silenced: NewPathMatcher([]string{"/metrics"}),
	}

	created := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/users", nil)
	req = req.WithContext(context.WithValue(req.Context(), chimiddleware.RequestIDKey, "req-1"))
	chain(created, mw).ServeHTTP(httptest.NewRecorder(), req)

	logs := entries()
	require.Len(t, logs, 2)
	assert.Equal(t, `Started POST "/users"`, logs[0]["message"])
	assert.Equal(t, "req-1", logs[0]["request_id"])
	assert.Equal(t, "Completed 201 Created", logs[1]["message"])
	assert.EqualValues(t, 201, logs[1]["status"])
}

func TestRequestLogger_ImplicitOK(t *testing.T) {
	logger, entries := newBufferLogger(t)
	mw := &RequestLogger{Logger: logger}

	chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), mw).
		ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	logs := entries()
	require.Len(t, logs, 2)
	assert.NotContains(t, logs[0], "request_id")
	assert.Equal(t, "Completed 200 OK", logs[1]["message"])
}

func TestRequestLogger_Silenced(t *testing.T) {
	logger, entries := newBufferLogger(t)
	mw := &RequestLogger{
		Logger:   logger,
		Silenced: NewPathMatcher([]string{"/metrics", "/internal/*"}),
	}

	for _, path := range []string{"/metrics", "/internal/logging"} {
		rec := httptest.NewRecorder()
		chain(http.HandlerFunc(teapot), mw).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Empty(t, entries())
}
