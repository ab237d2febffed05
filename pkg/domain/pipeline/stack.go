package pipeline

import (
	"net/http"
)

// Stack is an ordered collection of middleware entries. The first entry is
// the outermost: it sees the request first and the response last.
//
// A Stack is not safe for concurrent mutation. It is configured on a single
// goroutine during startup and frozen by Build; the handler returned by Build
// is safe for concurrent use.
type Stack struct {
	entries []Entry
	frozen  bool
}

// NewStack creates a mutable stack holding entries in order.
func NewStack(entries ...Entry) *Stack {
	return &Stack{entries: append([]Entry(nil), entries...)}
}

// Use appends e to the end of the stack. Duplicate names are allowed.
func (s *Stack) Use(e Entry, args ...any) error {
	if s.frozen {
		return &FrozenStackError{Op: "use", Name: e.Name}
	}
	s.entries = append(s.entries, e.withArgs(args))
	return nil
}

// Prepend inserts e at the front of the stack.
func (s *Stack) Prepend(e Entry, args ...any) error {
	if s.frozen {
		return &FrozenStackError{Op: "prepend", Name: e.Name}
	}
	s.insertAt(0, e.withArgs(args))
	return nil
}

// InsertBefore inserts e immediately before the first entry named target.
func (s *Stack) InsertBefore(target string, e Entry, args ...any) error {
	if s.frozen {
		return &FrozenStackError{Op: "insert_before", Name: e.Name}
	}
	i := s.Index(target)
	if i < 0 {
		return &NotFoundError{Op: "insert_before", Target: target}
	}
	s.insertAt(i, e.withArgs(args))
	return nil
}

// InsertAfter inserts e immediately after the first entry named target.
func (s *Stack) InsertAfter(target string, e Entry, args ...any) error {
	if s.frozen {
		return &FrozenStackError{Op: "insert_after", Name: e.Name}
	}
	i := s.Index(target)
	if i < 0 {
		return &NotFoundError{Op: "insert_after", Target: target}
	}
	s.insertAt(i+1, e.withArgs(args))
	return nil
}

// Swap replaces the first entry named target with e, keeping its position.
func (s *Stack) Swap(target string, e Entry, args ...any) error {
	if s.frozen {
		return &FrozenStackError{Op: "swap", Name: e.Name}
	}
	i := s.Index(target)
	if i < 0 {
		return &NotFoundError{Op: "swap", Target: target}
	}
	s.entries[i] = e.withArgs(args)
	return nil
}

// Delete removes the first entry named name. Deleting a name that is not in
// the stack is a no-op.
func (s *Stack) Delete(name string) error {
	if s.frozen {
		return &FrozenStackError{Op: "delete", Name: name}
	}
	i := s.Index(name)
	if i < 0 {
		return nil
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return nil
}

// Index returns the position of the first entry named name, or -1.
func (s *Stack) Index(name string) int {
	for i, e := range s.entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether an entry named name is in the stack.
func (s *Stack) Has(name string) bool {
	return s.Index(name) >= 0
}

// Len returns the number of entries.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Names returns the entry names in wrap order, outermost first.
func (s *Stack) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the entries in wrap order.
func (s *Stack) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Frozen reports whether the stack has been built.
func (s *Stack) Frozen() bool {
	return s.frozen
}

// Clone returns a mutable copy of the stack.
func (s *Stack) Clone() *Stack {
	return NewStack(s.entries...)
}

// Build constructs every entry and composes them around terminal so that the
// first entry wraps the second and so on down to terminal. The stack is
// frozen afterwards; building a frozen stack again composes a fresh chain
// from the same entries.
func (s *Stack) Build(terminal http.Handler) (http.Handler, error) {
	if terminal == nil {
		terminal = http.NotFoundHandler()
	}

	mws := make([]Middleware, len(s.entries))
	for i, e := range s.entries {
		mw, err := e.build()
		if err != nil {
			return nil, err
		}
		mws[i] = mw
	}

	h := terminal
	for i := len(mws) - 1; i >= 0; i-- {
		h = compose(mws[i], h)
	}

	s.frozen = true
	return h, nil
}

func (s *Stack) insertAt(i int, e Entry) {
	s.entries = append(s.entries, Entry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = e
}
