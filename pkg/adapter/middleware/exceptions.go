package middleware

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/damianoneill/go-pipeline/pkg/domain/logging"
)

// ShowExceptions recovers panics from the rest of the stack, logs them with a
// cleaned backtrace and renders a 500 response. When the response was
// already committed the panic is only logged. http.ErrAbortHandler is
// re-raised so the server can abort the connection.
type ShowExceptions struct {
	Logger  logging.Logger
	Cleaner *BacktraceCleaner
}

func (m *ShowExceptions) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
			panic(rec)
		}

		frames := Callers(1)
		if m.Cleaner != nil {
			frames = m.Cleaner.Clean(frames)
		}
		m.render(ww, r, rec, frames)
	}()

	next.ServeHTTP(ww, r)
}

func (m *ShowExceptions) render(w chimiddleware.WrapResponseWriter, r *http.Request, rec any, frames []Frame) {
	committed := w.Status() != 0
	msg := fmt.Sprint(rec)
	kind := fmt.Sprintf("%T", rec)

	lines := make([]string, len(frames))
	for i, f := range frames {
		lines[i] = f.String()
	}

	m.Logger.WithContext(r.Context()).ErrorWith(fmt.Sprintf("%s: %s", kind, msg), logging.Fields{
		"method":    r.Method,
		"path":      r.URL.Path,
		"backtrace": strings.Join(lines, "\n"),
		"committed": committed,
	})
	if committed {
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, `{"status":500,"error":%q}`, http.StatusText(http.StatusInternalServerError))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html><head><title>We're sorry, but something went wrong (500)</title></head>"+
		"<body><h1>We're sorry, but something went wrong.</h1><p>%s</p></body></html>\n", html.EscapeString(kind))
}
