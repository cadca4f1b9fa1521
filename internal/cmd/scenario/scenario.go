// Package scenario parses scenario command flags and runs Lua match scripts.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/atlas/internal/platform/cmd"
	"github.com/louisbranch/atlas/internal/tools/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	// Scenario is a comma-separated list of script paths.
	Scenario string        `env:"ATLAS_SCENARIO_FILE"`
	Assert   string        `env:"ATLAS_SCENARIO_ASSERT"  envDefault:"strict"`
	Verbose  bool          `env:"ATLAS_SCENARIO_VERBOSE"`
	Timeout  time.Duration `env:"ATLAS_SCENARIO_TIMEOUT" envDefault:"10s"`
	Seed     int64         `env:"ATLAS_SEED"`

	ShutdownTimeout time.Duration `env:"ATLAS_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Scenario, "scenario", cfg.Scenario, "path to scenario lua file (comma-separated for several)")
	fs.StringVar(&cfg.Assert, "assert", cfg.Assert, "assertion mode: strict or log")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "timeout per step")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for matches without a pinned opening")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "time allowed to flush traces on exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes every configured scenario and reports one line per script.
// All scripts run even when an earlier one fails.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	paths := splitPaths(cfg.Scenario)
	if len(paths) == 0 {
		return errors.New("scenario path is required")
	}
	mode, err := scenario.ParseAssertionMode(cfg.Assert)
	if err != nil {
		return err
	}

	runnerCfg := scenario.Config{
		Timeout:    cfg.Timeout,
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     log.New(errOut, "", 0),
		Seed:       cfg.Seed,
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.CommandScenario, func(ctx context.Context) error {
		var failures []error
		for _, path := range paths {
			if err := scenario.RunFile(ctx, runnerCfg, path); err != nil {
				fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
				failures = append(failures, fmt.Errorf("%s: %w", path, err))
				continue
			}
			fmt.Fprintf(out, "PASS %s\n", path)
		}
		return errors.Join(failures...)
	}, entrypoint.WithShutdownTimeout(cfg.ShutdownTimeout))
}

func splitPaths(value string) []string {
	var paths []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			paths = append(paths, part)
		}
	}
	return paths
}
