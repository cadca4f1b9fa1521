// Package boltdb stores save slots in a BoltDB file.
package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"

	"github.com/louisbranch/atlas/internal/services/game/domain/match"
	"github.com/louisbranch/atlas/internal/services/game/storage"
)

const (
	snapshotBucket = "snapshots"
	// matchBucket maps a match id to the slot holding it.
	matchBucket = "match_slots"
)

// DefaultSlot names the slot used when none is configured.
const DefaultSlot = "default"

type record struct {
	MatchID  string          `json:"matchId,omitempty"`
	SavedAt  time.Time       `json:"savedAt"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// Store persists one save slot in a BoltDB database.
type Store struct {
	db   *bbolt.DB
	slot string
	now  func() time.Time
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

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db, slot: slot, now: time.Now}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying BoltDB database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
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
	if s == nil || s.db == nil {
		return match.Snapshot{}, fmt.Errorf("storage is not configured")
	}

	var rec record
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(snapshotBucket))
		if bucket == nil {
			return fmt.Errorf("snapshot bucket is missing")
		}
		payload := bucket.Get([]byte(s.slot))
		if payload == nil {
			return storage.ErrNotFound
		}
		if err := json.Unmarshal(payload, &rec); err != nil {
			return fmt.Errorf("unmarshal slot %s: %w", s.slot, err)
		}
		return nil
	})
	if err != nil {
		return match.Snapshot{}, err
	}

	snap, err := match.DecodeSnapshot(rec.Snapshot)
	if err != nil {
		return match.Snapshot{}, fmt.Errorf("slot %s: %w", s.slot, err)
	}
	return snap, nil
}

// SaveSnapshot writes snap into the store's slot. A match id already held by
// another slot is rejected with storage.ErrSlotConflict.
func (s *Store) SaveSnapshot(ctx context.Context, snap match.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	encoded, err := match.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	matchID := strings.TrimSpace(snap.MatchID)
	payload, err := json.Marshal(record{MatchID: matchID, SavedAt: s.now().UTC(), Snapshot: encoded})
	if err != nil {
		return fmt.Errorf("marshal slot %s: %w", s.slot, err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		snapshots := tx.Bucket([]byte(snapshotBucket))
		matches := tx.Bucket([]byte(matchBucket))
		if snapshots == nil || matches == nil {
			return fmt.Errorf("storage buckets are missing")
		}

		if matchID != "" {
			if owner := matches.Get([]byte(matchID)); owner != nil && string(owner) != s.slot {
				return fmt.Errorf("save slot %s: %w", s.slot, storage.ErrSlotConflict)
			}
		}
		if previous := snapshots.Get([]byte(s.slot)); previous != nil {
			var old record
			if err := json.Unmarshal(previous, &old); err == nil && old.MatchID != "" && old.MatchID != matchID {
				if err := matches.Delete([]byte(old.MatchID)); err != nil {
					return fmt.Errorf("release match %s: %w", old.MatchID, err)
				}
			}
		}
		if matchID != "" {
			if err := matches.Put([]byte(matchID), []byte(s.slot)); err != nil {
				return fmt.Errorf("index match %s: %w", matchID, err)
			}
		}
		return snapshots.Put([]byte(s.slot), payload)
	})
}

// ListSlots returns every slot in the database ordered by name.
func (s *Store) ListSlots(ctx context.Context) ([]storage.SlotInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	var slots []storage.SlotInfo
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(snapshotBucket))
		if bucket == nil {
			return fmt.Errorf("snapshot bucket is missing")
		}
		return bucket.ForEach(func(key, value []byte) error {
			var rec record
			if err := json.Unmarshal(value, &rec); err != nil {
				return fmt.Errorf("unmarshal slot %s: %w", key, err)
			}
			slots = append(slots, storage.SlotInfo{Slot: string(key), MatchID: rec.MatchID, SavedAt: rec.SavedAt})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range []string{snapshotBucket, matchBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create %s bucket: %w", name, err)
			}
		}
		return nil
	})
}

var (
	_ storage.SnapshotStore = (*Store)(nil)
	_ storage.SlotLister    = (*Store)(nil)
)
