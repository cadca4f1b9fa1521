// Package cmd holds the startup plumbing shared by the atlas commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/atlas/internal/platform/config"
	"github.com/louisbranch/atlas/internal/platform/otel"
	gootel "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// Command identifiers used for telemetry service names.
const (
	CommandGame     = "game"
	CommandScenario = "scenario"
)

const defaultShutdownTimeout = 5 * time.Second

type runOptions struct {
	shutdownTimeout time.Duration
}

// RunOption adjusts RunWithTelemetry.
type RunOption func(*runOptions)

// WithShutdownTimeout bounds how long span flushing may take on exit.
func WithShutdownTimeout(d time.Duration) RunOption {
	return func(o *runOptions) {
		if d > 0 {
			o.shutdownTimeout = d
		}
	}
}

// ParseConfig loads an optional dotenv file and then environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	if err := config.LoadDotEnv(""); err != nil {
		return err
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry sets up tracing for command, runs it inside a root span
// and flushes spans before returning.
func RunWithTelemetry(ctx context.Context, command string, run func(context.Context) error, opts ...RunOption) error {
	command = strings.TrimSpace(command)
	if command == "" {
		return errors.New("command name is required")
	}
	if run == nil {
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	o := runOptions{shutdownTimeout: defaultShutdownTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	shutdown, err := otel.Setup(ctx, "atlas-"+command)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), o.shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", command, err)
		}
	}()

	ctx, span := gootel.Tracer("atlas/cmd").Start(ctx, command)
	defer span.End()
	if err := run(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
