package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/go-pipeline/pkg/domain/logging"
)

func TestParamsParser(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		want        map[string]any
	}{
		{
			name:        "json object",
			target:      "/orders",
			contentType: "application/json",
			body:        `{"name":"widget","qty":2}`,
			want:        map[string]any{"name": "widget", "qty": float64(2)},
		},
		{
			name:        "json with charset merges over query",
			target:      "/orders?page=3&name=query",
			contentType: "application/json; charset=utf-8",
			body:        `{"name":"body"}`,
			want:        map[string]any{"name": "body", "page": "3"},
		},
		{
			name:        "json array under _json",
			target:      "/orders",
			contentType: "application/json",
			body:        `[1,2]`,
			want:        map[string]any{"_json": []any{float64(1), float64(2)}},
		},
		{
			name:        "yaml",
			target:      "/orders",
			contentType: "application/x-yaml",
			body:        "name: widget\nqty: 2\n",
			want:        map[string]any{"name": "widget", "qty": 2},
		},
		{
			name:        "empty body",
			target:      "/orders",
			contentType: "application/json",
			body:        "",
			want:        map[string]any{},
		},
		{
			name:        "other content types are left alone",
			target:      "/orders?page=1",
			contentType: "text/plain",
			body:        "name=widget",
			want:        map[string]any{"page": "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]any
			var raw []byte
			h := chain(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got = Params(r)
				raw, _ = io.ReadAll(r.Body)
			}), &ParamsParser{Logger: logging.Nop{}})

			req := httptest.NewRequest(http.MethodPost, tt.target, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.body, string(raw), "body remains readable")
		})
	}
}

func TestParamsParser_Malformed(t *testing.T) {
	logger, entries := newBufferLogger(t)
	called := false
	h := chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}), &ParamsParser{Logger: logger})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	logs := entries()
	require.Len(t, logs, 1)
	assert.Equal(t, "warn", logs[0]["level"])
	assert.Equal(t, "application/json", logs[0]["content_type"])
}

func TestParamsParser_TooLarge(t *testing.T) {
	h := chain(http.HandlerFunc(teapot), &ParamsParser{Logger: logging.Nop{}})

	body := `{"blob":"` + strings.Repeat("a", MaxParamsBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
