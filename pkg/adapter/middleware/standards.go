package middleware

import "net/http"

// BestStandardsSupport sets X-UA-Compatible unless the application already
// chose a value.
type BestStandardsSupport struct {
	Value string
}

func (m *BestStandardsSupport) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	hw := newHookWriter(w, func() {
		if w.Header().Get("X-UA-Compatible") == "" {
			w.Header().Set("X-UA-Compatible", m.Value)
		}
	})
	next.ServeHTTP(hw, r)
	hw.fire()
}
