package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is matched by NotFoundError.
	ErrNotFound = errors.New("middleware not found")

	// ErrFrozen is matched by FrozenStackError.
	ErrFrozen = errors.New("middleware stack is frozen")

	// ErrUnknownMiddleware is matched by UnknownMiddlewareError.
	ErrUnknownMiddleware = errors.New("unknown middleware")

	errNoConstructor = errors.New("entry has no constructor")
	errNilMiddleware = errors.New("constructor returned nil middleware")
)

// NotFoundError reports a relative operation whose anchor is not in the stack.
type NotFoundError struct {
	Op     string
	Target string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: no middleware named %q in stack", e.Op, e.Target)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// FrozenStackError reports a mutation attempted after the stack was built.
type FrozenStackError struct {
	Op   string
	Name string
}

func (e *FrozenStackError) Error() string {
	return fmt.Sprintf("%s %q: middleware stack is frozen", e.Op, e.Name)
}

func (e *FrozenStackError) Unwrap() error {
	return ErrFrozen
}

// UnknownMiddlewareError reports a directive naming middleware that is not
// registered.
type UnknownMiddlewareError struct {
	Name string
}

func (e *UnknownMiddlewareError) Error() string {
	return fmt.Sprintf("unknown middleware %q", e.Name)
}

func (e *UnknownMiddlewareError) Unwrap() error {
	return ErrUnknownMiddleware
}

// ConstructorError reports an entry that failed to construct during Build.
type ConstructorError struct {
	Name string
	Err  error
}

func (e *ConstructorError) Error() string {
	return fmt.Sprintf("constructing middleware %q: %v", e.Name, e.Err)
}

func (e *ConstructorError) Unwrap() error {
	return e.Err
}
