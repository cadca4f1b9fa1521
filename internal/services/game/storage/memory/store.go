// Package memory keeps a saved match in process memory.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/louisbranch/atlas/internal/services/game/domain/match"
	"github.com/louisbranch/atlas/internal/services/game/storage"
)

// Store holds at most one snapshot.
type Store struct {
	mu    sync.Mutex
	snap  match.Snapshot
	saved bool
	saves int
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// LoadSnapshot returns a copy of the saved snapshot.
func (s *Store) LoadSnapshot(ctx context.Context) (match.Snapshot, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return match.Snapshot{}, err
		}
	}
	if s == nil {
		return match.Snapshot{}, errors.New("snapshot store is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.saved {
		return match.Snapshot{}, storage.ErrNotFound
	}
	return s.snap.Clone(), nil
}

// SaveSnapshot stores a copy of snap.
func (s *Store) SaveSnapshot(ctx context.Context, snap match.Snapshot) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	if s == nil {
		return errors.New("snapshot store is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = snap.Clone()
	s.saved = true
	s.saves++
	return nil
}

// Saves returns how many times SaveSnapshot succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

var _ storage.SnapshotStore = (*Store)(nil)
