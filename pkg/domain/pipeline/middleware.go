// pkg/domain/pipeline/middleware.go

// Package pipeline defines the ordered, mutable middleware stack that wraps
// an application's request handler. A Stack is mutable while the application
// is configured and frozen once it is built into an http.Handler.
package pipeline

import (
	"net/http"
)

// Middleware is the single capability every stack entry must provide.
// Handle may call next zero or more times, transform the request or the
// response, or short-circuit by writing a response without calling next.
type Middleware interface {
	Handle(w http.ResponseWriter, r *http.Request, next http.Handler)
}

// Wrapper is implemented by middleware that prefer to be composed once at
// build time rather than invoked per request through Handle.
type Wrapper interface {
	Wrap(next http.Handler) http.Handler
}

// HandleFunc adapts an ordinary function to the Middleware interface.
type HandleFunc func(w http.ResponseWriter, r *http.Request, next http.Handler)

// Handle implements Middleware.
func (f HandleFunc) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	f(w, r, next)
}

// wrapped adapts chi-style middleware.
type wrapped struct {
	fn func(http.Handler) http.Handler
}

// Wrap adapts a func(http.Handler) http.Handler, the shape used by chi and
// most net/http middleware, to Middleware.
func Wrap(fn func(http.Handler) http.Handler) Middleware {
	return wrapped{fn: fn}
}

func (m wrapped) Wrap(next http.Handler) http.Handler {
	return m.fn(next)
}

// Handle composes on every call. Build never takes this path because
// wrapped also implements Wrapper.
func (m wrapped) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	m.fn(next).ServeHTTP(w, r)
}

// Constructor builds a Middleware from optional arguments. It runs once,
// when the stack is built.
type Constructor func(args ...any) (Middleware, error)

// Entry identifies a middleware in a Stack. Entries are matched by Name for
// relative insertion, swapping and deletion.
type Entry struct {
	Name string
	New  Constructor
	Args []any
}

// NewEntry creates an entry that always yields mw.
func NewEntry(name string, mw Middleware) Entry {
	return Entry{
		Name: name,
		New: func(...any) (Middleware, error) {
			return mw, nil
		},
	}
}

// FuncEntry creates an entry from chi-style middleware.
func FuncEntry(name string, fn func(http.Handler) http.Handler) Entry {
	return NewEntry(name, Wrap(fn))
}

// ConstructorEntry creates an entry whose middleware is constructed at build
// time from ctor and args.
func ConstructorEntry(name string, ctor Constructor, args ...any) Entry {
	return Entry{Name: name, New: ctor, Args: args}
}

func (e Entry) withArgs(args []any) Entry {
	if len(args) > 0 {
		e.Args = append([]any(nil), args...)
	}
	return e
}

func (e Entry) build() (Middleware, error) {
	if e.New == nil {
		return nil, &ConstructorError{Name: e.Name, Err: errNoConstructor}
	}
	mw, err := e.New(e.Args...)
	if err != nil {
		return nil, &ConstructorError{Name: e.Name, Err: err}
	}
	if mw == nil {
		return nil, &ConstructorError{Name: e.Name, Err: errNilMiddleware}
	}
	return mw, nil
}

// compose wraps next with mw.
func compose(mw Middleware, next http.Handler) http.Handler {
	if w, ok := mw.(Wrapper); ok {
		return w.Wrap(next)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw.Handle(w, r, next)
	})
}
