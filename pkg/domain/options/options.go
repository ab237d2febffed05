// Package options provides the generic functional options used by every
// factory in the module.
package options

// Option modifies some options type T.
type Option[T any] interface {
	ApplyOption(*T) error
}

// OptionFunc converts a function to the Option interface.
type OptionFunc[T any] func(*T) error

// ApplyOption implements Option. A nil OptionFunc leaves the target unchanged.
func (f OptionFunc[T]) ApplyOption(o *T) error {
	if f == nil {
		return nil
	}
	return f(o)
}

// Apply applies opts to target in order, skipping nil options and stopping at
// the first error.
func Apply[T any](target *T, opts ...Option[T]) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.ApplyOption(target); err != nil {
			return err
		}
	}
	return nil
}
