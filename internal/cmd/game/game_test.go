package game

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("game", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Store != StoreJSON {
		t.Fatalf("expected json store, got %q", cfg.Store)
	}
	if cfg.DataPath != "./data/data.json" {
		t.Fatalf("expected default data path, got %q", cfg.DataPath)
	}
	if cfg.Slot != "default" || cfg.Locale != "en-US" {
		t.Fatalf("expected default slot and locale, got %q/%q", cfg.Slot, cfg.Locale)
	}
	if cfg.PenaltyWord != "LOSER" || cfg.SeedWord != "atlas" {
		t.Fatalf("expected LOSER/atlas, got %q/%q", cfg.PenaltyWord, cfg.SeedWord)
	}
	if !cfg.PrintLog {
		t.Fatal("expected print log to default to true")
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Fatalf("shutdown timeout = %v, want 5s", cfg.ShutdownTimeout)
	}
}

func TestParseConfigEnvAndFlags(t *testing.T) {
	t.Setenv("ATLAS_STORE", "sqlite")
	t.Setenv("ATLAS_LOCALE", "pt-BR")
	t.Setenv("ATLAS_SHUTDOWN_TIMEOUT", "2s")

	fs := flag.NewFlagSet("game", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-slot", "weekend", "-seed", "42", "-print-log=false"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Store != StoreSQLite || cfg.Locale != "pt-BR" {
		t.Fatalf("expected env values, got %q/%q", cfg.Store, cfg.Locale)
	}
	if cfg.Slot != "weekend" || cfg.Seed != 42 || cfg.PrintLog {
		t.Fatalf("expected flag overrides, got %+v", cfg)
	}
	if cfg.ShutdownTimeout != 2*time.Second {
		t.Fatalf("shutdown timeout = %v, want 2s", cfg.ShutdownTimeout)
	}
}

func TestParseConfigReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "atlas.env")
	if err := os.WriteFile(path, []byte("ATLAS_SEED_WORD=globe\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ATLAS_ENV_FILE", path)
	// godotenv sets variables directly; restore after the test.
	t.Setenv("ATLAS_SEED_WORD", "")
	if err := os.Unsetenv("ATLAS_SEED_WORD"); err != nil {
		t.Fatalf("unset: %v", err)
	}

	cfg, err := ParseConfig(flag.NewFlagSet("game", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.SeedWord != "globe" {
		t.Fatalf("expected seed word from env file, got %q", cfg.SeedWord)
	}
}

func TestRunQuitsFromMenu(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	if err := Run(context.Background(), cfg, strings.NewReader("2\n"), &out); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(out.String(), "Thank you for playing!") {
		t.Fatalf("expected goodbye, got:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Exited the game.") {
		t.Fatalf("expected event log, got:\n%s", out.String())
	}
}

func TestRunSavesAndLoads(t *testing.T) {
	for _, store := range []string{StoreJSON, StoreSQLite, StoreBolt} {
		t.Run(store, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Store = store

			var first bytes.Buffer
			if err := Run(context.Background(), cfg, strings.NewReader("1\n2\nAna\nBo\nquit\n1\n2\n"), &first); err != nil {
				t.Fatalf("first run: %v", err)
			}
			if !strings.Contains(first.String(), "GAME SAVED!") {
				t.Fatalf("expected save confirmation, got:\n%s", first.String())
			}

			var second bytes.Buffer
			if err := Run(context.Background(), cfg, strings.NewReader("3\nstatus\nquit\n2\n2\n"), &second); err != nil {
				t.Fatalf("second run: %v", err)
			}
			if !strings.Contains(second.String(), "Data Loaded") || !strings.Contains(second.String(), "Player 2: Bo") {
				t.Fatalf("expected restored match, got:\n%s", second.String())
			}
		})
	}
}

func TestRunRejectsUnknownStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Store = "redis"
	if err := Run(context.Background(), cfg, strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unknown store")
	}
}

func TestRunRejectsMissingDictionary(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dictionary = filepath.Join(t.TempDir(), "missing.txt")
	if err := Run(context.Background(), cfg, strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for missing dictionary")
	}
}

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		Store:       StoreJSON,
		DataPath:    filepath.Join(dir, "data", "data.json"),
		SQLitePath:  filepath.Join(dir, "atlas.db"),
		BoltPath:    filepath.Join(dir, "atlas.bolt"),
		Slot:        "default",
		Locale:      "en-US",
		PenaltyWord: "LOSER",
		SeedWord:    "atlas",
		PrintLog:    true,
		Seed:        11,
	}
}
