package middleware

import "net/http"

// Head answers HEAD requests by running them as GET and dropping the body.
type Head struct{}

func (Head) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if r.Method != http.MethodHead {
		next.ServeHTTP(w, r)
		return
	}

	get := r.Clone(r.Context())
	get.Method = http.MethodGet
	next.ServeHTTP(bodyless{w}, get)
}

type bodyless struct {
	http.ResponseWriter
}

func (b bodyless) Write(p []byte) (int, error) {
	return len(p), nil
}

func (b bodyless) Unwrap() http.ResponseWriter {
	return b.ResponseWriter
}
