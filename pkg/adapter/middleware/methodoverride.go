package middleware

import (
	"context"
	"net/http"
	"strings"
)

// MethodOverrideParam is the form field consulted by MethodOverride.
const MethodOverrideParam = "_method"

var overridable = map[string]bool{
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

type originalMethodKey struct{}

// MethodOverride lets a POST stand in for another verb through the _method
// form field or the X-HTTP-Method-Override header.
type MethodOverride struct{}

func (MethodOverride) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if r.Method != http.MethodPost {
		next.ServeHTTP(w, r)
		return
	}

	method := strings.ToUpper(r.Header.Get("X-HTTP-Method-Override"))
	if method == "" && isForm(r) {
		method = strings.ToUpper(r.PostFormValue(MethodOverrideParam))
	}
	if !overridable[method] {
		next.ServeHTTP(w, r)
		return
	}

	ctx := context.WithValue(r.Context(), originalMethodKey{}, r.Method)
	r = r.WithContext(ctx)
	r.Method = method
	next.ServeHTTP(w, r)
}

// OriginalMethod returns the method the client sent, before any override.
func OriginalMethod(r *http.Request) string {
	if m, ok := r.Context().Value(originalMethodKey{}).(string); ok {
		return m
	}
	return r.Method
}

func isForm(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}
