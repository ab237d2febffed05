// pkg/usecase/bootstrap/registry.go

package bootstrap

import (
	"fmt"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/damianoneill/go-pipeline/pkg/domain/pipeline"
)

// Middleware available to directives in addition to the default entries.
const (
	EntryTimeout      = "timeout"
	EntryCompress     = "compress"
	EntryNoCache      = "no_cache"
	EntryHeartbeat    = "heartbeat"
	EntryStripSlashes = "strip_slashes"
	EntryThrottle     = "throttle"
	EntryRecoverer    = "recoverer"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultCompressLevel = 5
	defaultHeartbeatPath = "/ping"
	defaultThrottleLimit = 100
)

// newRegistry registers every default entry under its name, so directives
// can re-insert an entry a rule left out, and the chi middleware below.
func newRegistry(s *Service) *pipeline.Registry {
	reg := pipeline.NewRegistry()
	for _, rule := range DefaultRules() {
		reg.Register(rule.Name, func(...any) (pipeline.Middleware, error) {
			return rule.New(s)
		})
	}

	// timeout [duration]
	reg.Register(EntryTimeout, func(args ...any) (pipeline.Middleware, error) {
		d, err := durationArg(args, 0, defaultTimeout)
		if err != nil {
			return nil, err
		}
		return pipeline.Wrap(chimiddleware.Timeout(d)), nil
	})

	// compress [level] [content types...]
	reg.Register(EntryCompress, func(args ...any) (pipeline.Middleware, error) {
		level, err := intArg(args, 0, defaultCompressLevel)
		if err != nil {
			return nil, err
		}
		var types []string
		for i := 1; i < len(args); i++ {
			t, err := stringArg(args, i, "")
			if err != nil {
				return nil, err
			}
			types = append(types, t)
		}
		return pipeline.Wrap(chimiddleware.Compress(level, types...)), nil
	})

	// heartbeat [path]
	reg.Register(EntryHeartbeat, func(args ...any) (pipeline.Middleware, error) {
		path, err := stringArg(args, 0, defaultHeartbeatPath)
		if err != nil {
			return nil, err
		}
		return pipeline.Wrap(chimiddleware.Heartbeat(path)), nil
	})

	// throttle [limit]
	reg.Register(EntryThrottle, func(args ...any) (pipeline.Middleware, error) {
		limit, err := intArg(args, 0, defaultThrottleLimit)
		if err != nil {
			return nil, err
		}
		if limit <= 0 {
			return nil, fmt.Errorf("throttle limit must be positive, got %d", limit)
		}
		return pipeline.Wrap(chimiddleware.Throttle(limit)), nil
	})

	reg.RegisterEntry(pipeline.FuncEntry(EntryNoCache, chimiddleware.NoCache))
	reg.RegisterEntry(pipeline.FuncEntry(EntryStripSlashes, chimiddleware.StripSlashes))
	reg.RegisterEntry(pipeline.FuncEntry(EntryRecoverer, chimiddleware.Recoverer))

	return reg
}

// durationArg reads args[i] as a duration. Strings are parsed with
// time.ParseDuration; bare numbers are seconds.
func durationArg(args []any, i int, def time.Duration) (time.Duration, error) {
	if i >= len(args) || args[i] == nil {
		return def, nil
	}
	switch v := args[i].(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("argument %d: %w", i, err)
		}
		return d, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("argument %d: want duration, got %T", i, v)
	}
}

func intArg(args []any, i int, def int) (int, error) {
	if i >= len(args) || args[i] == nil {
		return def, nil
	}
	switch v := args[i].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("argument %d: want integer, got %v", i, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("argument %d: %w", i, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("argument %d: want integer, got %T", i, v)
	}
}

func stringArg(args []any, i int, def string) (string, error) {
	if i >= len(args) || args[i] == nil {
		return def, nil
	}
	s, ok := args[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d: want string, got %T", i, args[i])
	}
	return s, nil
}
