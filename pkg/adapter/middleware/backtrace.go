package middleware

import (
	"fmt"
	"runtime"
	"strings"
)

// Frame is a single resolved stack frame.
type Frame struct {
	Function string
	File     string
	Line     int
}

func (f Frame) String() string {
	return fmt.Sprintf("%s\n\t%s:%d", f.Function, f.File, f.Line)
}

// Silencer reports whether a frame should be dropped from a backtrace.
type Silencer func(Frame) bool

// BacktraceCleaner removes framework frames from backtraces so logged
// errors point at application code.
type BacktraceCleaner struct {
	silencers []Silencer
}

// FrameworkPackages are silenced by the default cleaner.
var FrameworkPackages = []string{
	"runtime.",
	"net/http.",
	"testing.",
	"github.com/go-chi/",
	"go.opentelemetry.io/",
	"github.com/damianoneill/go-pipeline/pkg/adapter/",
	"github.com/damianoneill/go-pipeline/pkg/domain/",
}

// NewBacktraceCleaner returns a cleaner silencing FrameworkPackages.
func NewBacktraceCleaner() *BacktraceCleaner {
	c := &BacktraceCleaner{}
	c.AddSilencer(func(f Frame) bool {
		for _, prefix := range FrameworkPackages {
			if strings.HasPrefix(f.Function, prefix) {
				return true
			}
		}
		return false
	})
	return c
}

func (c *BacktraceCleaner) AddSilencer(s Silencer) {
	c.silencers = append(c.silencers, s)
}

// RemoveSilencers keeps every frame from now on.
func (c *BacktraceCleaner) RemoveSilencers() {
	c.silencers = nil
}

// Clean returns the frames no silencer matches.
func (c *BacktraceCleaner) Clean(frames []Frame) []Frame {
	out := make([]Frame, 0, len(frames))
outer:
	for _, f := range frames {
		for _, s := range c.silencers {
			if s(f) {
				continue outer
			}
		}
		out = append(out, f)
	}
	return out
}

// Callers captures the stack of the calling goroutine, skipping skip frames
// above the caller.
func Callers(skip int) []Frame {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+2, pcs)
	iter := runtime.CallersFrames(pcs[:n])

	frames := make([]Frame, 0, n)
	for {
		f, more := iter.Next()
		frames = append(frames, Frame{Function: f.Function, File: f.File, Line: f.Line})
		if !more {
			break
		}
	}
	return frames
}
