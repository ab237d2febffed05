package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianoneill/go-pipeline/pkg/domain/options"
)

func TestLoggerOptions(t *testing.T) {
	o := LoggerOptions{Level: InfoLevel}
	require.NoError(t, options.Apply(&o,
		WithLevel(DebugLevel),
		WithServiceName("pipeline"),
		WithFields(Fields{"version": "1.2.0"}),
	))

	assert.Equal(t, LoggerOptions{
		Level:       DebugLevel,
		ServiceName: "pipeline",
		Fields:      Fields{"version": "1.2.0"},
	}, o)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"error":   ErrorLevel,
		"":        InfoLevel,
		"verbose": InfoLevel,
	}

	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNop(t *testing.T) {
	var l Logger = Nop{}
	l = l.Named("static").With(Fields{"k": "v"})
	l.InfoWith("ignored", Fields{"a": 1})
	assert.NoError(t, l.Sync())
}
