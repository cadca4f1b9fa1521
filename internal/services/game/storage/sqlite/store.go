package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/atlas/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/atlas/internal/services/game/domain/match"
	"github.com/louisbranch/atlas/internal/services/game/storage"
	"github.com/louisbranch/atlas/internal/services/game/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const timeFormat = time.RFC3339Nano

// DefaultSlot names the slot used when none is configured.
const DefaultSlot = "default"

// Store persists one save slot in a SQLite database.
type Store struct {
	sqlDB *sql.DB
	slot  string
	now   func() time.Time
}

// Open opens (or creates) the database at path and binds the store to slot.
// An empty slot uses DefaultSlot.
func Open(path, slot string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	slot = strings.TrimSpace(slot)
	if slot == "" {
		slot = DefaultSlot
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{
		sqlDB: sqlDB,
		slot:  slot,
		now:   time.Now,
	}

	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Slot returns the slot this store reads and writes.
func (s *Store) Slot() string {
	return s.slot
}

// LoadSnapshot returns the snapshot saved in the store's slot.
func (s *Store) LoadSnapshot(ctx context.Context) (match.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return match.Snapshot{}, err
	}
	if s == nil || s.sqlDB == nil {
		return match.Snapshot{}, fmt.Errorf("storage is not configured")
	}

	var payload string
	row := s.sqlDB.QueryRowContext(ctx, "SELECT payload FROM match_snapshots WHERE slot = ?", s.slot)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return match.Snapshot{}, storage.ErrNotFound
		}
		return match.Snapshot{}, fmt.Errorf("load slot %s: %w", s.slot, err)
	}

	snap, err := match.DecodeSnapshot([]byte(payload))
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("slot %s: %w", s.slot, err)
	}
	return snap, nil
}

// SaveSnapshot writes snap into the store's slot, replacing what was there.
func (s *Store) SaveSnapshot(ctx context.Context, snap match.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	payload, err := match.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	matchID := sql.NullString{String: snap.MatchID, Valid: strings.TrimSpace(snap.MatchID) != ""}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO match_snapshots (slot, match_id, payload, saved_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET
    match_id = excluded.match_id,
    payload = excluded.payload,
    saved_at = excluded.saved_at
`, s.slot, matchID, string(payload), s.now().UTC().Format(timeFormat))
	if err != nil {
		if isMatchIDUniqueViolation(err) {
			return fmt.Errorf("save slot %s: %w", s.slot, storage.ErrSlotConflict)
		}
		return fmt.Errorf("save slot %s: %w", s.slot, err)
	}
	return nil
}

// ListSlots returns every slot in the database ordered by name.
func (s *Store) ListSlots(ctx context.Context) ([]storage.SlotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, "SELECT slot, match_id, saved_at FROM match_snapshots ORDER BY slot")
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []storage.SlotInfo
	for rows.Next() {
		var (
			slot    string
			matchID sql.NullString
			savedAt string
		)
		if err := rows.Scan(&slot, &matchID, &savedAt); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		stamp, err := time.Parse(timeFormat, savedAt)
		if err != nil {
			return nil, fmt.Errorf("parse saved_at for slot %s: %w", slot, err)
		}
		slots = append(slots, storage.SlotInfo{Slot: slot, MatchID: matchID.String, SavedAt: stamp})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

func isMatchIDUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE {
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "match_snapshots.match_id")
}

var (
	_ storage.SnapshotStore = (*Store)(nil)
	_ storage.SlotLister    = (*Store)(nil)
)
