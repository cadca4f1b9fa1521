package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/atlas/internal/services/game/domain/match"
)

// ErrNotFound indicates there is no saved match to load.
var ErrNotFound = errors.New("saved match not found")

// ErrSlotConflict indicates the match being saved already occupies another slot.
var ErrSlotConflict = errors.New("match is saved under another slot")

// SnapshotStore persists the snapshot of one match.
type SnapshotStore interface {
	// LoadSnapshot returns the saved match or ErrNotFound.
	LoadSnapshot(ctx context.Context) (match.Snapshot, error)
	// SaveSnapshot replaces the saved match.
	SaveSnapshot(ctx context.Context, snap match.Snapshot) error
}

// SlotInfo describes one saved slot.
type SlotInfo struct {
	Slot    string
	MatchID string
	SavedAt time.Time
}

// SlotLister is implemented by stores that keep several named slots.
type SlotLister interface {
	ListSlots(ctx context.Context) ([]SlotInfo, error)
}
