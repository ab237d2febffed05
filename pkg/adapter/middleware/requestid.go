package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestIDHeader is read from the request and echoed on the response.
const RequestIDHeader = "X-Request-Id"

// RequestID assigns every request an id, keeping a well-formed incoming
// X-Request-Id. The id is stored where chi's GetReqID finds it.
type RequestID struct{}

func (RequestID) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	id := r.Header.Get(RequestIDHeader)
	if !validRequestID(id) {
		id = uuid.NewString()
	}

	w.Header().Set(RequestIDHeader, id)
	ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, id)
	next.ServeHTTP(w, r.WithContext(ctx))
}

func validRequestID(id string) bool {
	if id == "" || len(id) > 255 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
