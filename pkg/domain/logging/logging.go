// pkg/domain/logging/logging.go

// Package logging defines the structured logging interfaces shared by the
// boot sequence and the middleware stack.
package logging

import (
	"context"
	"net/http"

	"github.com/damianoneill/go-pipeline/pkg/domain/options"
)

//go:generate mockgen -destination=mocks/mock_logging.go -package=mocks github.com/damianoneill/go-pipeline/pkg/domain/logging Logger,Factory

// Level represents logging severity levels.
type Level string

const (
	// DebugLevel logs debug or trace information
	DebugLevel Level = "debug"

	// InfoLevel logs general information about program execution
	InfoLevel Level = "info"

	// WarnLevel logs potentially harmful situations
	WarnLevel Level = "warn"

	// ErrorLevel logs error conditions
	ErrorLevel Level = "error"
)

// Fields represents structured logging key-value pairs.
type Fields map[string]interface{}

// LoggerOptions holds configuration for logger implementations.
type LoggerOptions struct {
	// Level sets the minimum logging level
	Level Level

	// ServiceName identifies the service in log output
	ServiceName string

	// Fields contains default fields added to all log entries
	Fields Fields
}

// Option is a function that modifies LoggerOptions
type Option = options.Option[LoggerOptions]

// DefaultOptions returns the default logger options
func DefaultOptions() LoggerOptions {
	return LoggerOptions{
		Level: InfoLevel,
	}
}

// ParseLevel maps a configured level name to a Level, defaulting to info.
func ParseLevel(name string) Level {
	switch Level(name) {
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
		return Level(name)
	default:
		return InfoLevel
	}
}

// WithLevel sets the minimum logging level.
func WithLevel(level Level) Option {
	return options.OptionFunc[LoggerOptions](func(o *LoggerOptions) error {
		o.Level = level
		return nil
	})
}

// WithServiceName sets the service name included in all log entries.
func WithServiceName(name string) Option {
	return options.OptionFunc[LoggerOptions](func(o *LoggerOptions) error {
		o.ServiceName = name
		return nil
	})
}

// WithFields sets default fields included in all log entries.
func WithFields(fields Fields) Option {
	return options.OptionFunc[LoggerOptions](func(o *LoggerOptions) error {
		o.Fields = fields
		return nil
	})
}

// Logger defines the core logging interface.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)

	DebugWith(msg string, fields Fields)
	InfoWith(msg string, fields Fields)
	WarnWith(msg string, fields Fields)
	ErrorWith(msg string, fields Fields)

	// With returns a new Logger with additional default fields
	With(fields Fields) Logger

	// Named returns a new Logger scoped to a component, such as a single
	// middleware in the stack
	Named(name string) Logger

	// WithContext returns a new Logger carrying trace identifiers from ctx
	WithContext(ctx context.Context) Logger

	// Sync flushes buffered entries
	Sync() error
}

// LeveledLogger extends Logger with level management capabilities.
type LeveledLogger interface {
	Logger

	SetLevel(level Level)
	GetLevel() Level
}

// RuntimeConfigurable is implemented by loggers whose level can be changed
// over HTTP.
type RuntimeConfigurable interface {
	GetConfigHandler() http.Handler
}

// Factory creates new logger instances
type Factory interface {
	NewLogger(opts ...Option) (LeveledLogger, error)
}

// Nop is a Logger that discards everything.
type Nop struct{}

func (Nop) Debug(string) {}
func (Nop) Info(string) {}
func (Nop) Warn(string) {}
func (Nop) Error(string) {}
func (Nop) DebugWith(string, Fields) {}
func (Nop) InfoWith(string, Fields) {}
func (Nop) WarnWith(string, Fields) {}
func (Nop) ErrorWith(string, Fields) {}
func (n Nop) With(Fields) Logger { return n }
func (n Nop) Named(string) Logger { return n }
func (n Nop) WithContext(context.Context) Logger { return n }
func (Nop) Sync() error { return nil }
