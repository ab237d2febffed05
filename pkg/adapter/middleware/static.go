package middleware

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Static serves files under Root for GET and HEAD requests, trying the path
// itself, then path.html, then path/index.html. Anything else falls through.
type Static struct {
	Root string
}

func (s *Static) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		next.ServeHTTP(w, r)
		return
	}

	name, ok := s.lookup(r.URL.Path)
	if !ok {
		next.ServeHTTP(w, r)
		return
	}

	f, err := os.Open(name)
	if err != nil {
		next.ServeHTTP(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		next.ServeHTTP(w, r)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (s *Static) lookup(urlPath string) (string, bool) {
	clean := path.Clean("/" + urlPath)
	if strings.Contains(clean, "\x00") {
		return "", false
	}

	base := filepath.Join(s.Root, filepath.FromSlash(clean))
	candidates := []string{base, filepath.Join(base, "index.html")}
	if clean != "/" {
		candidates = []string{base, base + ".html", filepath.Join(base, "index.html")}
	}
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err == nil && info.Mode().IsRegular() {
			return c, true
		}
	}
	return "", false
}
