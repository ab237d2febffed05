package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"

	"gopkg.in/yaml.v3"

	"github.com/damianoneill/go-pipeline/pkg/domain/logging"
)

// MaxParamsBody bounds the request body ParamsParser will decode.
const MaxParamsBody = 10 << 20

type paramsKey struct{}

// ParamsParser decodes JSON and YAML request bodies into a parameter map.
// Malformed bodies are rejected with 400.
type ParamsParser struct {
	Logger logging.Logger
}

func (m *ParamsParser) Handle(w http.ResponseWriter, r *http.Request, next http.Handler) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var decode func([]byte, any) error
	switch mediaType {
	case "application/json":
		decode = json.Unmarshal
	case "application/x-yaml", "application/yaml", "text/yaml":
		decode = yaml.Unmarshal
	default:
		next.ServeHTTP(w, r)
		return
	}

	params, err := readParams(r, decode)
	if err != nil {
		m.Logger.WithContext(r.Context()).WarnWith("Error parsing request parameters", logging.Fields{
			"content_type": mediaType,
			"error":        err.Error(),
		})
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	ctx := context.WithValue(r.Context(), paramsKey{}, params)
	next.ServeHTTP(w, r.WithContext(ctx))
}

func readParams(r *http.Request, decode func([]byte, any) error) (map[string]any, error) {
	if r.Body == nil {
		return map[string]any{}, nil
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxParamsBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	if len(body) > MaxParamsBody {
		return nil, fmt.Errorf("body exceeds %d bytes", MaxParamsBody)
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	params := map[string]any{}
	if len(body) == 0 {
		return params, nil
	}

	var decoded any
	if err := decode(body, &decoded); err != nil {
		return nil, err
	}
	switch v := decoded.(type) {
	case map[string]any:
		return v, nil
	case nil:
		return params, nil
	default:
		// non-object bodies are exposed under "_json"
		params["_json"] = v
		return params, nil
	}
}

// Params returns the body parameters merged over the query string. Body
// values win.
func Params(r *http.Request) map[string]any {
	out := map[string]any{}
	for k, v := range r.URL.Query() {
		if len(v) == 1 {
			out[k] = v[0]
		} else {
			out[k] = v
		}
	}
	if body, ok := r.Context().Value(paramsKey{}).(map[string]any); ok {
		for k, v := range body {
			out[k] = v
		}
	}
	return out
}
