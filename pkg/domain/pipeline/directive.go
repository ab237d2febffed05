package pipeline

import (
	"fmt"
	"sort"
	"sync"
)

// Op names a stack mutation.
type Op string

const (
	OpUse          Op = "use"
	OpInsertBefore Op = "insert_before"
	OpInsertAfter  Op = "insert_after"
	OpSwap         Op = "swap"
	OpDelete       Op = "delete"
)

// Directive is a declared stack mutation. Directives come from configuration
// files, where middleware is referenced by Name, or from code, where Entry
// carries the middleware directly.
type Directive struct {
	Op     Op     `mapstructure:"op" yaml:"op" validate:"required,oneof=use insert_before insert_after swap delete"`
	Target string `mapstructure:"target" yaml:"target" validate:"required_if=Op insert_before,required_if=Op insert_after,required_if=Op swap"`
	Name   string `mapstructure:"name" yaml:"name" validate:"required_unless=Op delete"`
	Args   []any  `mapstructure:"args" yaml:"args"`

	// Entry takes precedence over Name lookup when it has a constructor.
	Entry Entry `mapstructure:"-" yaml:"-"`
}

// Use declares appending e.
func Use(e Entry, args ...any) Directive {
	return Directive{Op: OpUse, Name: e.Name, Entry: e, Args: args}
}

// InsertBefore declares inserting e before target.
func InsertBefore(target string, e Entry, args ...any) Directive {
	return Directive{Op: OpInsertBefore, Target: target, Name: e.Name, Entry: e, Args: args}
}

// InsertAfter declares inserting e after target.
func InsertAfter(target string, e Entry, args ...any) Directive {
	return Directive{Op: OpInsertAfter, Target: target, Name: e.Name, Entry: e, Args: args}
}

// Swap declares replacing target with e.
func Swap(target string, e Entry, args ...any) Directive {
	return Directive{Op: OpSwap, Target: target, Name: e.Name, Entry: e, Args: args}
}

// Delete declares removing the first entry named name.
func Delete(name string) Directive {
	return Directive{Op: OpDelete, Name: name}
}

func (d Directive) String() string {
	switch d.Op {
	case OpInsertBefore, OpInsertAfter, OpSwap:
		return fmt.Sprintf("%s %s %s", d.Op, d.Target, d.Name)
	default:
		return fmt.Sprintf("%s %s", d.Op, d.Name)
	}
}

// Apply performs the directive on s, resolving Name through reg when the
// directive carries no entry.
func (d Directive) Apply(s *Stack, reg *Registry) error {
	if d.Op == OpDelete {
		return s.Delete(d.Name)
	}

	e, err := d.entry(reg)
	if err != nil {
		return err
	}

	switch d.Op {
	case OpUse:
		return s.Use(e, d.Args...)
	case OpInsertBefore:
		return s.InsertBefore(d.Target, e, d.Args...)
	case OpInsertAfter:
		return s.InsertAfter(d.Target, e, d.Args...)
	case OpSwap:
		return s.Swap(d.Target, e, d.Args...)
	default:
		return fmt.Errorf("unsupported directive op %q", d.Op)
	}
}

func (d Directive) entry(reg *Registry) (Entry, error) {
	if d.Entry.New != nil {
		if d.Entry.Name == "" {
			d.Entry.Name = d.Name
		}
		return d.Entry, nil
	}
	if reg == nil {
		return Entry{}, &UnknownMiddlewareError{Name: d.Name}
	}
	return reg.Lookup(d.Name)
}

// Apply applies directives to s in declaration order and stops at the first
// failure.
func Apply(s *Stack, reg *Registry, directives ...Directive) error {
	for i, d := range directives {
		if err := d.Apply(s, reg); err != nil {
			return fmt.Errorf("middleware directive %d (%s): %w", i, d, err)
		}
	}
	return nil
}

// Registry maps middleware names to constructors so configuration can refer
// to middleware by name.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

// Register associates name with ctor, replacing any previous registration.
func (r *Registry) Register(name string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[name] = ctor
}

// RegisterEntry registers e under its own name.
func (r *Registry) RegisterEntry(e Entry) {
	r.Register(e.Name, e.New)
}

// Lookup returns an entry for name.
func (r *Registry) Lookup(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ctor, ok := r.ctors[name]
	if !ok {
		return Entry{}, &UnknownMiddlewareError{Name: name}
	}
	return Entry{Name: name, New: ctor}, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.ctors))
	for name := range r.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
