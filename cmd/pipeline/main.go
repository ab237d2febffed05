// cmd/pipeline/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/damianoneill/go-pipeline/pkg/adapter/cache"
	"github.com/damianoneill/go-pipeline/pkg/adapter/config"
	"github.com/damianoneill/go-pipeline/pkg/adapter/database"
	httpadapter "github.com/damianoneill/go-pipeline/pkg/adapter/http"
	"github.com/damianoneill/go-pipeline/pkg/adapter/logging"
	"github.com/damianoneill/go-pipeline/pkg/adapter/metrics"
	"github.com/damianoneill/go-pipeline/pkg/adapter/tracing"
	domainlog "github.com/damianoneill/go-pipeline/pkg/domain/logging"
	"github.com/damianoneill/go-pipeline/pkg/usecase/bootstrap"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		color.New(color.FgRed, color.Bold).Fprint(os.Stderr, "error: ")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("pipeline", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configFile = fs.String("config", "", "Path to the YAML settings file")
		envPrefix  = fs.String("env-prefix", "PIPELINE", "Prefix for environment overrides")
		name       = fs.String("name", "pipeline", "Service name used in logs, metrics and traces")
		port       = fs.Int("port", 8080, "HTTP port for serve")
		logLevel   = fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: pipeline [options] <command>\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  middleware   Print the middleware stack, outermost first\n")
		fmt.Fprintf(stderr, "  config       Print the settings with secrets masked\n")
		fmt.Fprintf(stderr, "  serve        Serve the stack until interrupted\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("expected exactly one command")
	}

	command := fs.Arg(0)
	switch command {
	case "middleware", "config", "serve":
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", command)
	}

	// Only serve logs to stdout; the other commands print there.
	logOutput := stderr
	if command == "serve" {
		logOutput = stdout
	}

	svc, err := bootstrap.NewService(bootstrap.Options{
		ServiceName: *name,
		Version:     version,
		ConfigFile:  *configFile,
		EnvPrefix:   *envPrefix,
		LogLevel:    domainlog.ParseLevel(*logLevel),

		EnableLogConfig:    true,
		EnableConfigViewer: true,

		Server: bootstrap.ServerOptions{Port: *port},
	}, dependencies(logOutput), nil)
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}

	switch command {
	case "middleware":
		return printMiddleware(svc, stdout)
	case "config":
		return printConfig(svc, stdout)
	default:
		return serve(svc)
	}
}

func dependencies(logOutput io.Writer) bootstrap.Dependencies {
	return bootstrap.Dependencies{
		ConfigFactory:   config.NewFactory(),
		LoggerFactory:   logging.NewFactory(logging.WithOutput(logOutput)),
		RouterFactory:   httpadapter.NewFactory(),
		CacheFactory:    cache.NewFactory(),
		TracerFactory:   tracing.NewFactory(),
		MetricsFactory:  metrics.NewFactory(nil),
		DatabaseFactory: database.NewFactory(),
	}
}

func printMiddleware(svc *bootstrap.Service, w io.Writer) error {
	names, err := svc.Middleware()
	if err != nil {
		return err
	}

	verb := color.New(color.FgCyan)
	entry := color.New(color.Bold)
	for _, name := range names {
		verb.Fprint(w, "use ")
		entry.Fprintln(w, name)
	}
	verb.Fprint(w, "run ")
	entry.Fprintln(w, "router")
	return nil
}

func printConfig(svc *bootstrap.Service, w io.Writer) error {
	settings, err := svc.Config().GetMaskedConfig(nil)
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(settings); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	return enc.Close()
}

func serve(svc *bootstrap.Service) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- svc.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		svc.Logger().InfoWith("Received signal", domainlog.Fields{"signal": sig.String()})
	}

	return svc.Shutdown(context.Background())
}
