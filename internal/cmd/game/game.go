// Package game parses game command flags and runs the console match loop.
package game

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/atlas/internal/platform/cmd"
	"github.com/louisbranch/atlas/internal/random"
	"github.com/louisbranch/atlas/internal/services/game/app"
	"github.com/louisbranch/atlas/internal/services/game/domain/dictionary"
	"github.com/louisbranch/atlas/internal/services/game/domain/journal"
	"github.com/louisbranch/atlas/internal/services/game/domain/match"
	"github.com/louisbranch/atlas/internal/services/game/storage"
	"github.com/louisbranch/atlas/internal/services/game/storage/boltdb"
	"github.com/louisbranch/atlas/internal/services/game/storage/jsonfile"
	"github.com/louisbranch/atlas/internal/services/game/storage/sqlite"
)

// Store backends.
const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreBolt   = "bolt"
)

// Config holds game command configuration.
type Config struct {
	Store       string `env:"ATLAS_STORE"        envDefault:"json"`
	DataPath    string `env:"ATLAS_DATA_PATH"    envDefault:"./data/data.json"`
	SQLitePath  string `env:"ATLAS_SQLITE_PATH"  envDefault:"./data/atlas.db"`
	BoltPath    string `env:"ATLAS_BOLT_PATH"    envDefault:"./data/atlas.bolt"`
	Slot        string `env:"ATLAS_SLOT"         envDefault:"default"`
	Dictionary  string `env:"ATLAS_DICTIONARY"`
	Locale      string `env:"ATLAS_LOCALE"       envDefault:"en-US"`
	PenaltyWord string `env:"ATLAS_PENALTY_WORD" envDefault:"LOSER"`
	SeedWord    string `env:"ATLAS_SEED_WORD"    envDefault:"atlas"`
	PrintLog    bool   `env:"ATLAS_PRINT_LOG"    envDefault:"true"`
	// Seed fixes the opening draws; zero draws a fresh seed.
	Seed            int64         `env:"ATLAS_SEED"`
	ShutdownTimeout time.Duration `env:"ATLAS_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Store, "store", cfg.Store, "save backend: json, sqlite or bolt")
	fs.StringVar(&cfg.DataPath, "data", cfg.DataPath, "path of the JSON save file")
	fs.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "path of the SQLite save database")
	fs.StringVar(&cfg.BoltPath, "bolt", cfg.BoltPath, "path of the BoltDB save database")
	fs.StringVar(&cfg.Slot, "slot", cfg.Slot, "save slot for the sqlite and bolt backends")
	fs.StringVar(&cfg.Dictionary, "dictionary", cfg.Dictionary, "place list file (empty uses the built-in list)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "message locale")
	fs.StringVar(&cfg.PenaltyWord, "penalty-word", cfg.PenaltyWord, "word whose letters are handed out as penalties")
	fs.StringVar(&cfg.SeedWord, "seed-word", cfg.SeedWord, "word the opening letter is drawn from")
	fs.BoolVar(&cfg.PrintLog, "print-log", cfg.PrintLog, "print the event log on exit")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for reproducible matches")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "time allowed to flush traces on exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run plays matches over in and out until the player quits.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer) error {
	words, err := dictionary.Load(cfg.Dictionary)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	rng, err := random.NewRand(cfg.Seed)
	if err != nil {
		return err
	}
	rules := match.DefaultRules()
	rules.PenaltyWord = cfg.PenaltyWord
	rules.SeedWord = cfg.SeedWord

	events := journal.New(nil)
	engine, err := match.New(
		match.WithRules(rules),
		match.WithRand(rng),
		match.WithRecorder(events),
	)
	if err != nil {
		return err
	}

	session := app.NewSession(engine, store, events)
	console := app.NewConsole(session, in, out, app.ConsoleConfig{
		Locale:     cfg.Locale,
		Dictionary: words,
		PrintLog:   cfg.PrintLog,
	})
	return entrypoint.RunWithTelemetry(ctx, entrypoint.CommandGame, console.Run,
		entrypoint.WithShutdownTimeout(cfg.ShutdownTimeout))
}

func openStore(ctx context.Context, cfg Config) (storage.SnapshotStore, func(), error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Store)) {
	case "", StoreJSON:
		store := jsonfile.New(cfg.DataPath)
		log.Printf("save file: %s", store.Path())
		return store, func() {}, nil
	case StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, cfg.Slot)
		if err != nil {
			return nil, nil, err
		}
		logSlots(ctx, store, store.Slot())
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("close sqlite store: %v", err)
			}
		}, nil
	case StoreBolt:
		store, err := boltdb.Open(cfg.BoltPath, cfg.Slot)
		if err != nil {
			return nil, nil, err
		}
		logSlots(ctx, store, store.Slot())
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("close bolt store: %v", err)
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (want %s, %s or %s)", cfg.Store, StoreJSON, StoreSQLite, StoreBolt)
	}
}

func logSlots(ctx context.Context, lister storage.SlotLister, current string) {
	slots, err := lister.ListSlots(ctx)
	if err != nil {
		log.Printf("list save slots: %v", err)
		return
	}
	if len(slots) == 0 {
		return
	}
	names := make([]string, 0, len(slots))
	for _, slot := range slots {
		names = append(names, slot.Slot)
	}
	log.Printf("save slots: %s (using %s)", strings.Join(names, ", "), current)
}
