// pkg/domain/http/probes_test.go
package http_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/go-pipeline/pkg/domain/http"
)

func TestNewProbeResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		details  map[string]interface{}
		wantJSON string
	}{
		{
			name:     "response with status only",
			status:   "ok",
			wantJSON: `{"status":"ok"}`,
		},
		{
			name:   "response with status and details",
			status: "ok",
			details: map[string]interface{}{
				"version": "1.0.0",
				"uptime":  "1h",
			},
			wantJSON: `{"status":"ok","details":{"version":"1.0.0","uptime":"1h"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(http.NewProbeResponse(tt.status, tt.details))
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(got))
		})
	}
}

func TestDefaultProbeHandlers(t *testing.T) {
	handlers := http.DefaultProbeHandlers()

	for name, check := range map[string]http.ProbeCheck{
		"liveness":  handlers.LivenessCheck,
		"readiness": handlers.ReadinessCheck,
		"startup":   handlers.StartupCheck,
	} {
		t.Run(name, func(t *testing.T) {
			got := check()
			assert.Equal(t, "ok", got.Status)
			assert.Nil(t, got.Details)
		})
	}
}
