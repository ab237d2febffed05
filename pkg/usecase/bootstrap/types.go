// pkg/usecase/bootstrap/types.go

package bootstrap

import (
	"crypto/tls"
	"net/http"
	"time"

	domaincache "github.com/damianoneill/go-pipeline/pkg/domain/cache"
	domainconfig "github.com/damianoneill/go-pipeline/pkg/domain/config"
	domaindb "github.com/damianoneill/go-pipeline/pkg/domain/database"
	domainhttp "github.com/damianoneill/go-pipeline/pkg/domain/http"
	domainlog "github.com/damianoneill/go-pipeline/pkg/domain/logging"
	domainmetrics "github.com/damianoneill/go-pipeline/pkg/domain/metrics"
	domaintracing "github.com/damianoneill/go-pipeline/pkg/domain/tracing"
)

// Dependencies contains all external dependencies required by the service.
// TracerFactory, MetricsFactory and DatabaseFactory are only needed when the
// settings enable the feature that uses them.
type Dependencies struct {
	ConfigFactory   domainconfig.Factory
	LoggerFactory   domainlog.Factory
	RouterFactory   domainhttp.Factory
	CacheFactory    domaincache.Factory
	TracerFactory   domaintracing.Factory
	MetricsFactory  domainmetrics.Factory
	DatabaseFactory domaindb.Factory
}

type ServerOptions struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderSize   int

	TLSConfig   *tls.Config
	TLSCertFile string
	TLSKeyFile  string

	// PreStart runs against the configured server before it listens
	PreStart func(*http.Server) error
}

// Options configures the bootstrap service.
type Options struct {
	// Service Identity
	ServiceName string
	Version     string

	// Configuration
	ConfigFile string
	EnvPrefix  string

	// ConfigDefaults override the built-in setting defaults, keyed as in
	// the config file ("action_controller.perform_caching").
	ConfigDefaults     map[string]interface{}
	EnableConfigViewer bool

	// Logging
	LogLevel        domainlog.Level
	LogFields       domainlog.Fields
	EnableLogConfig bool // Whether to mount runtime log config endpoint

	// HTTP Server
	Server ServerOptions

	// Tracing, used when observability.tracing_endpoint is set
	TracingSampleRate  float64
	TracingPropagators []string
}
