package http

import (
	"context"
	"time"
)

// ProbeResponse is the body of a probe endpoint.
type ProbeResponse struct {
	// Status is "ok" when healthy; anything else answers 503.
	Status string `json:"status"`

	Details map[string]interface{} `json:"details,omitempty"`
}

// ProbeCheck performs a health check.
type ProbeCheck func() ProbeResponse

// ProbeHandlers holds the liveness, readiness and startup checks.
type ProbeHandlers struct {
	LivenessCheck  ProbeCheck
	ReadinessCheck ProbeCheck
	StartupCheck   ProbeCheck
}

// DefaultProbeHandlers reports healthy for every probe.
func DefaultProbeHandlers() *ProbeHandlers {
	ok := func() ProbeResponse {
		return ProbeResponse{Status: "ok"}
	}
	return &ProbeHandlers{
		LivenessCheck:  ok,
		ReadinessCheck: ok,
		StartupCheck:   ok,
	}
}

func NewProbeResponse(status string, details map[string]interface{}) ProbeResponse {
	return ProbeResponse{
		Status:  status,
		Details: details,
	}
}

// PingCheck reports "ok" when ping succeeds within timeout, and "failed"
// with the error under details.name otherwise.
func PingCheck(name string, timeout time.Duration, ping func(context.Context) error) ProbeCheck {
	return func() ProbeResponse {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := ping(ctx); err != nil {
			return NewProbeResponse("failed", map[string]interface{}{name: err.Error()})
		}
		return NewProbeResponse("ok", map[string]interface{}{name: "ok"})
	}
}
