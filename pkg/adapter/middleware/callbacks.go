package middleware

import (
	"net/http"
	"sync"
)

// Callback runs around each request.
type Callback func(r *http.Request)

// Callbacks runs registered before callbacks in registration order ahead of
// the rest of the stack, and after callbacks in reverse order once it
// returns or panics.
type Callbacks struct {
	mu     sync.RWMutex
	before []Callback
	after  []Callback
}

func (c *Callbacks) Before(cb Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.before = append(c.before, cb)
}

func (c *Callbacks) After(cb Callback) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.after = append(c.after, cb)
}

func (c *Callbacks) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	c.mu.RLock()
	before := append([]Callback(nil), c.before...)
	after := append([]Callback(nil), c.after...)
	c.mu.RUnlock()

	defer func() {
		for i := len(after) - 1; i >= 0; i-- {
			after[i](r)
		}
	}()
	for _, cb := range before {
		cb(r)
	}
	next.ServeHTTP(w, r)
}
