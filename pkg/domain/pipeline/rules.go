package pipeline

import (
	"fmt"
)

// Position places a rule's entry relative to its anchor.
type Position int

const (
	// Append adds the entry at the end of the stack built so far.
	Append Position = iota

	// Prepend adds the entry at the front of the stack built so far.
	Prepend

	// Before inserts the entry immediately before the anchor.
	Before

	// After inserts the entry immediately after the anchor.
	After
)

func (p Position) String() string {
	switch p {
	case Append:
		return "append"
	case Prepend:
		return "prepend"
	case Before:
		return "before"
	case After:
		return "after"
	default:
		return fmt.Sprintf("position(%d)", int(p))
	}
}

// Rule is one row of a declarative stack template. C is the application
// context the predicate and factory receive, typically a pointer to the
// application's configuration and collaborators.
type Rule[C any] struct {
	// Name is the identity of the produced entry.
	Name string

	// When gates inclusion. A nil When always includes the entry.
	When func(C) bool

	// Position and Anchor place the entry. Anchor is ignored for Append and
	// Prepend.
	Position Position
	Anchor   string

	// New constructs the middleware when the stack is built.
	New func(C) (Middleware, error)
}

// Assemble evaluates rules in table order against ctx and returns the
// resulting mutable stack. Table order is the precedence: when several rules
// share an anchor they are placed in the order they appear. A rule whose
// anchor is not present fails with a NotFoundError.
func Assemble[C any](ctx C, rules []Rule[C]) (*Stack, error) {
	s := NewStack()
	for _, rule := range rules {
		if rule.When != nil && !rule.When(ctx) {
			continue
		}

		e := ruleEntry(ctx, rule)

		var err error
		switch rule.Position {
		case Append:
			err = s.Use(e)
		case Prepend:
			err = s.Prepend(e)
		case Before:
			err = s.InsertBefore(rule.Anchor, e)
		case After:
			err = s.InsertAfter(rule.Anchor, e)
		default:
			err = fmt.Errorf("unsupported position %s", rule.Position)
		}
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
	}
	return s, nil
}

func ruleEntry[C any](ctx C, rule Rule[C]) Entry {
	return Entry{
		Name: rule.Name,
		New: func(...any) (Middleware, error) {
			if rule.New == nil {
				return nil, errNoConstructor
			}
			return rule.New(ctx)
		},
	}
}
