package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// RuntimeHeader carries the time spent below this middleware, in seconds.
const RuntimeHeader = "X-Runtime"

type Runtime struct {
	now func() time.Time
}

func NewRuntime() *Runtime {
	return &Runtime{now: time.Now}
}

func (m *Runtime) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	start := m.now()
	hw := newHookWriter(w, func() {
		if w.Header().Get(RuntimeHeader) == "" {
			elapsed := m.now().Sub(start).Seconds()
			w.Header().Set(RuntimeHeader, strconv.FormatFloat(elapsed, 'f', 6, 64))
		}
	})
	next.ServeHTTP(hw, r)
	hw.fire()
}
