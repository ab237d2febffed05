package middleware

import (
	"context"
	"net/http"
	"sync"
)

// FlashSessionKey is where flash messages live in the session.
const FlashSessionKey = "flash"

type flashKey struct{}

// Flash carries messages to the next request. Messages that arrived from
// the previous request are dropped when this one ends unless kept.
type Flash struct {
	mu     sync.Mutex
	values map[string]any
	used   map[string]bool
}

// FlashFrom returns the request's flash, or nil outside the flash middleware.
func FlashFrom(ctx context.Context) *Flash {
	f, _ := ctx.Value(flashKey{}).(*Flash)
	return f
}

func (f *Flash) Get(key string) (any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

// Set makes a message available now and to the next request.
func (f *Flash) Set(key string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	delete(f.used, key)
}

// Now makes a message available to this request only.
func (f *Flash) Now(key string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	f.used[key] = true
}

// Keep carries a message over one more request.
func (f *Flash) Keep(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.used, key)
}

func (f *Flash) sweep() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]any, len(f.values))
	for k, v := range f.values {
		if !f.used[k] {
			out[k] = v
		}
	}
	return out
}

// FlashMiddleware loads the flash from the session and writes the survivors
// back before the session is saved.
type FlashMiddleware struct{}

func (FlashMiddleware) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	session := SessionFrom(r.Context())
	if session == nil {
		next.ServeHTTP(w, r)
		return
	}

	flash := &Flash{values: map[string]any{}, used: map[string]bool{}}
	stored, hadFlash := session.Get(FlashSessionKey)
	if prev, ok := stored.(map[string]any); ok {
		for k, v := range prev {
			flash.values[k] = v
			flash.used[k] = true
		}
	}

	hw := newHookWriter(w, func() {
		remaining := flash.sweep()
		switch {
		case len(remaining) > 0:
			session.Set(FlashSessionKey, remaining)
		case hadFlash:
			session.Delete(FlashSessionKey)
		}
	})

	ctx := context.WithValue(r.Context(), flashKey{}, flash)
	next.ServeHTTP(hw, r.WithContext(ctx))
	hw.fire()
}
