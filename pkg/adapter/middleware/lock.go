package middleware

import (
	"net/http"
	"sync"
)

// Lock serves one request at a time. It is in the stack unless
// allow_concurrency is set.
type Lock struct {
	mu sync.Mutex
}

func (l *Lock) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	next.ServeHTTP(w, r)
}
