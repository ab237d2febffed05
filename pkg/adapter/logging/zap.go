// Package logging provides a zap implementation of the logging domain
// interfaces.
package logging

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	domainlog "github.com/damianoneill/go-pipeline/pkg/domain/logging"
	"github.com/damianoneill/go-pipeline/pkg/domain/options"
)

var _ domainlog.LeveledLogger = (*ZapLogger)(nil)
var _ domainlog.RuntimeConfigurable = (*ZapLogger)(nil)

type ZapLogger struct {
	logger *zap.Logger
	state  *levelState
}

// levelState is shared between a logger and everything derived from it so
// SetLevel applies to the whole tree.
type levelState struct {
	mu    sync.RWMutex
	level domainlog.Level
	atom  zap.AtomicLevel
}

type ZapOptions struct {
	domainlog.LoggerOptions
	Development bool
	Output      io.Writer
}

type ZapOption = options.Option[ZapOptions]

// WithDevelopment enables development mode
func WithDevelopment(enabled bool) ZapOption {
	return options.OptionFunc[ZapOptions](func(o *ZapOptions) error {
		o.Development = enabled
		return nil
	})
}

// WithOutput sends log entries to w instead of stdout.
func WithOutput(w io.Writer) ZapOption {
	return options.OptionFunc[ZapOptions](func(o *ZapOptions) error {
		if w == nil {
			return fmt.Errorf("output writer is nil")
		}
		o.Output = w
		return nil
	})
}

// Factory creates zap loggers. Zap options given to NewFactory apply to
// every logger it creates.
type Factory struct {
	zopts []ZapOption
}

func NewFactory(zopts ...ZapOption) *Factory {
	return &Factory{zopts: zopts}
}

func (f *Factory) NewLogger(opts ...domainlog.Option) (domainlog.LeveledLogger, error) {
	return f.NewLoggerWithOptions(opts, nil)
}

// NewLoggerWithOptions creates a logger with both domain and zap options
func (f *Factory) NewLoggerWithOptions(dopts []domainlog.Option, zopts []ZapOption) (domainlog.LeveledLogger, error) {
	zo := ZapOptions{
		LoggerOptions: domainlog.DefaultOptions(),
	}

	if err := options.Apply(&zo.LoggerOptions, dopts...); err != nil {
		return nil, fmt.Errorf("applying domain options: %w", err)
	}

	if err := options.Apply(&zo, append(append([]ZapOption(nil), f.zopts...), zopts...)...); err != nil {
		return nil, fmt.Errorf("applying zap options: %w", err)
	}

	return createLogger(zo)
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func createLogger(zo ZapOptions) (*ZapLogger, error) {
	atom := zap.NewAtomicLevelAt(convertToZapLevel(zo.Level))

	var logger *zap.Logger
	if zo.Output != nil {
		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderConfig()),
			zapcore.AddSync(zo.Output),
			atom,
		)
		logger = zap.New(core)
	} else {
		config := zap.Config{
			Level:             atom,
			Development:       zo.Development,
			DisableStacktrace: !zo.Development,
			Encoding:          "json",
			EncoderConfig:     encoderConfig(),
			OutputPaths:       []string{"stdout"},
			ErrorOutputPaths:  []string{"stderr"},
			InitialFields:     make(map[string]interface{}),
		}

		built, err := config.Build(
			zap.AddCallerSkip(1),
			zap.AddCaller(),
		)
		if err != nil {
			return nil, fmt.Errorf("building zap logger: %w", err)
		}
		logger = built
	}

	if zo.ServiceName != "" {
		logger = logger.With(zap.String("service", zo.ServiceName))
	}

	if len(zo.Fields) > 0 {
		logger = logger.With(convertFields(zo.Fields)...)
	}

	return &ZapLogger{
		logger: logger,
		state:  &levelState{level: zo.Level, atom: atom},
	}, nil
}

func (l *ZapLogger) derive(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger, state: l.state}
}

func (l *ZapLogger) Debug(msg string) { l.logger.Debug(msg) }
func (l *ZapLogger) Info(msg string)  { l.logger.Info(msg) }
func (l *ZapLogger) Warn(msg string)  { l.logger.Warn(msg) }
func (l *ZapLogger) Error(msg string) { l.logger.Error(msg) }

func (l *ZapLogger) DebugWith(msg string, fields domainlog.Fields) {
	l.logger.Debug(msg, convertFields(fields)...)
}

func (l *ZapLogger) InfoWith(msg string, fields domainlog.Fields) {
	l.logger.Info(msg, convertFields(fields)...)
}

func (l *ZapLogger) WarnWith(msg string, fields domainlog.Fields) {
	l.logger.Warn(msg, convertFields(fields)...)
}

func (l *ZapLogger) ErrorWith(msg string, fields domainlog.Fields) {
	l.logger.Error(msg, convertFields(fields)...)
}

func (l *ZapLogger) With(fields domainlog.Fields) domainlog.Logger {
	return l.derive(l.logger.With(convertFields(fields)...))
}

func (l *ZapLogger) Named(name string) domainlog.Logger {
	return l.derive(l.logger.Named(name))
}

func (l *ZapLogger) WithContext(ctx context.Context) domainlog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return l
	}

	spanCtx := span.SpanContext()
	if !spanCtx.HasTraceID() {
		return l
	}

	logger := l.logger.With(
		zap.String("trace_id", spanCtx.TraceID().String()),
		zap.String("span_id", spanCtx.SpanID().String()),
	)
	if spanCtx.IsSampled() {
		logger = logger.With(zap.Bool("sampled", true))
	}
	return l.derive(logger)
}

func (l *ZapLogger) Sync() error {
	return l.logger.Sync()
}

func (l *ZapLogger) SetLevel(level domainlog.Level) {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()

	l.state.level = level
	l.state.atom.SetLevel(convertToZapLevel(level))
}

func (l *ZapLogger) GetLevel() domainlog.Level {
	l.state.mu.RLock()
	defer l.state.mu.RUnlock()

	return l.state.level
}

// GetConfigHandler exposes zap's atomic level endpoint (GET and PUT).
func (l *ZapLogger) GetConfigHandler() http.Handler {
	return l.state.atom
}

func convertToZapLevel(level domainlog.Level) zapcore.Level {
	switch level {
	case domainlog.DebugLevel:
		return zapcore.DebugLevel
	case domainlog.InfoLevel:
		return zapcore.InfoLevel
	case domainlog.WarnLevel:
		return zapcore.WarnLevel
	case domainlog.ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func convertFields(fields domainlog.Fields) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	zapFields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return zapFields
}
