// pkg/adapter/logging/zap_test.go
package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	domainlog "github.com/damianoneill/go-pipeline/pkg/domain/logging"
)

func newTestLogger(t *testing.T) (*ZapLogger, *observer.ObservedLogs) {
	t.Helper()
	atom := zap.NewAtomicLevelAt(zap.InfoLevel)
	core, obs := observer.New(atom)

	return &ZapLogger{
		logger: zap.New(core),
		state:  &levelState{level: domainlog.InfoLevel, atom: atom},
	}, obs
}

func TestZapLogger_Levels(t *testing.T) {
	tests := []struct {
		name    string
		level   domainlog.Level
		logFunc func(l *ZapLogger, msg string)
		wantLog bool
	}{
		{"debug not logged at info level", domainlog.InfoLevel, (*ZapLogger).Debug, false},
		{"info logged at info level", domainlog.InfoLevel, (*ZapLogger).Info, true},
		{"warn logged at info level", domainlog.InfoLevel, (*ZapLogger).Warn, true},
		{"error logged at info level", domainlog.InfoLevel, (*ZapLogger).Error, true},
		{"debug logged at debug level", domainlog.DebugLevel, (*ZapLogger).Debug, true},
		{"info not logged at error level", domainlog.ErrorLevel, (*ZapLogger).Info, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, obs := newTestLogger(t)
			logger.SetLevel(tt.level)
			assert.Equal(t, tt.level, logger.GetLevel())

			tt.logFunc(logger, "message")

			logs := obs.All()
			if tt.wantLog {
				require.Len(t, logs, 1)
				assert.Equal(t, "message", logs[0].Message)
			} else {
				assert.Empty(t, logs)
			}
		})
	}
}

func TestZapLogger_With(t *testing.T) {
	logger, obs := newTestLogger(t)

	derived := logger.With(domainlog.Fields{
		"string": "value",
		"int":    123,
		"bool":   true,
	})
	derived.InfoWith("test message", domainlog.Fields{"path": "/"})

	logs := obs.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "test message", logs[0].Message)

	fields := logs[0].ContextMap()
	assert.Equal(t, "value", fields["string"])
	assert.Equal(t, int64(123), fields["int"])
	assert.Equal(t, true, fields["bool"])
	assert.Equal(t, "/", fields["path"])
}

func TestZapLogger_NamedSharesLevel(t *testing.T) {
	logger, obs := newTestLogger(t)

	named := logger.Named("show_exceptions")
	named.Debug("hidden")
	assert.Empty(t, obs.All())

	logger.SetLevel(domainlog.DebugLevel)
	named.Debug("visible")

	logs := obs.All()
	require.Len(t, logs, 1)
	assert.Equal(t, "show_exceptions", logs[0].LoggerName)
}

func TestZapLogger_WithContext(t *testing.T) {
	logger, obs := newTestLogger(t)

	t.Run("with empty context", func(t *testing.T) {
		logger.WithContext(context.Background()).Info("test message")

		logs := obs.TakeAll()
		require.Len(t, logs, 1)
		assert.NotContains(t, logs[0].ContextMap(), "trace_id")
	})

	t.Run("with trace context", func(t *testing.T) {
		spanRecorder := tracetest.NewSpanRecorder()
		tracerProvider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder))
		defer func() {
			assert.NoError(t, tracerProvider.Shutdown(context.Background()))
		}()

		ctx, span := tracerProvider.Tracer("test").Start(context.Background(), "test-span")
		logger.WithContext(ctx).Info("traced message")
		span.End()

		logs := obs.TakeAll()
		require.Len(t, logs, 1)
		fields := logs[0].ContextMap()
		assert.NotEmpty(t, fields["trace_id"])
		assert.NotEmpty(t, fields["span_id"])
		assert.Equal(t, true, fields["sampled"])

		assert.Eventually(t, func() bool {
			return len(spanRecorder.Ended()) == 1
		}, time.Second, 10*time.Millisecond)
	})
}

func TestFactory_NewLogger(t *testing.T) {
	tests := []struct {
		name    string
		opts    []domainlog.Option
		zopts   []ZapOption
		wantErr bool
	}{
		{
			name: "default options",
		},
		{
			name: "with service name",
			opts: []domainlog.Option{domainlog.WithServiceName("test-service")},
		},
		{
			name:  "with development mode",
			zopts: []ZapOption{WithDevelopment(true)},
		},
		{
			name:    "nil output",
			zopts:   []ZapOption{WithOutput(nil)},
			wantErr: true,
		},
	}

	factory := NewFactory()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := factory.NewLoggerWithOptions(tt.opts, tt.zopts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Implements(t, (*domainlog.LeveledLogger)(nil), logger)
		})
	}
}

func TestFactory_WithOutput(t *testing.T) {
	var buf bytes.Buffer
	factory := NewFactory(WithOutput(&buf))

	logger, err := factory.NewLogger(
		domainlog.WithServiceName("shop"),
		domainlog.WithFields(domainlog.Fields{"version": "1.0.0"}),
	)
	require.NoError(t, err)

	logger.InfoWith("Started GET \"/\"", domainlog.Fields{"method": "GET"})
	require.NoError(t, logger.Sync())

	line := strings.TrimSpace(buf.String())
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))

	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "shop", entry["service"])
	assert.Equal(t, "1.0.0", entry["version"])
	assert.Equal(t, "GET", entry["method"])
	assert.NotContains(t, entry, "stacktrace")
}

func TestZapLogger_ConfigHandler(t *testing.T) {
	logger, _ := newTestLogger(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"level":"error"}`))
	logger.GetConfigHandler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, logger.state.atom.Enabled(zap.InfoLevel))
}
