package cmd

import (
	"context"
	"errors"
	"flag"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Store string `env:"ATLAS_CMD_TEST_STORE" envDefault:"json"`
	Slot  string `env:"ATLAS_CMD_TEST_SLOT" envDefault:"default"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("ATLAS_ENV_FILE", filepath.Join(t.TempDir(), "none.env"))
	t.Setenv("ATLAS_CMD_TEST_STORE", "sqlite")
	t.Setenv("ATLAS_CMD_TEST_SLOT", "env-slot")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfg.Store, "store", cfg.Store, "store")
	fs.StringVar(&cfg.Slot, "slot", cfg.Slot, "slot")

	if err := ParseArgs(fs, []string{"-store", "json"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfg.Store != "json" {
		t.Fatalf("store = %q, want flag value %q", cfg.Store, "json")
	}
	if cfg.Slot != "env-slot" {
		t.Fatalf("slot = %q, want env value %q", cfg.Slot, "env-slot")
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil target error")
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing command error")
	}
	if err := RunWithTelemetry(context.Background(), CommandGame, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv("ATLAS_OTEL_ENDPOINT", "")
	want := errors.New("boom")
	err := RunWithTelemetry(context.Background(), CommandScenario, func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("run error = %v, want %v", err, want)
	}
}

func TestRunWithTelemetryPassesContext(t *testing.T) {
	t.Setenv("ATLAS_OTEL_ENDPOINT", "")
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")

	var got any
	err := RunWithTelemetry(ctx, CommandGame, func(ctx context.Context) error {
		got = ctx.Value(key{})
		return nil
	}, WithShutdownTimeout(time.Second))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got != "v" {
		t.Fatalf("context value = %v, want v", got)
	}
}
