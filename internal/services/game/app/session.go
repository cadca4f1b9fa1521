package app

import (
	"context"
	"errors"

	apperrors "github.com/louisbranch/atlas/internal/platform/errors"
	"github.com/louisbranch/atlas/internal/services/game/domain/journal"
	"github.com/louisbranch/atlas/internal/services/game/domain/match"
	"github.com/louisbranch/atlas/internal/services/game/storage"
)

// Session binds an engine to the store its match is saved in.
type Session struct {
	engine  *match.Engine
	store   storage.SnapshotStore
	journal *journal.Journal
}

// NewSession creates a session. The journal may be nil.
func NewSession(engine *match.Engine, store storage.SnapshotStore, j *journal.Journal) *Session {
	return &Session{engine: engine, store: store, journal: j}
}

// Engine returns the engine driven by this session.
func (s *Session) Engine() *match.Engine {
	return s.engine
}

// Journal returns the session journal, possibly nil.
func (s *Session) Journal() *journal.Journal {
	return s.journal
}

// Save writes the current match to the store. Store failures are returned as
// PERSISTENCE_FAILURE errors.
func (s *Session) Save(ctx context.Context) error {
	snap := s.engine.Snapshot()
	if err := s.store.SaveSnapshot(ctx, snap); err != nil {
		if isContextError(err) {
			return err
		}
		return apperrors.Wrap(apperrors.CodePersistenceFailure, "save match", err)
	}
	s.journal.Record(journal.KindMatchSaved, "Game saved.")
	return nil
}

// Load restores the saved match into the engine. It reports false when there
// is nothing saved. Damaged snapshots surface as INVALID_SNAPSHOT and other
// store failures as PERSISTENCE_FAILURE.
func (s *Session) Load(ctx context.Context, dictionary []string) (bool, error) {
	snap, err := s.store.LoadSnapshot(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return false, nil
	case errors.Is(err, match.ErrInvalidSnapshot):
		return false, err
	case isContextError(err):
		return false, err
	case err != nil:
		return false, apperrors.Wrap(apperrors.CodePersistenceFailure, "load match", err)
	}

	if _, err := s.engine.RestoreMatch(snap, dictionary); err != nil {
		return false, err
	}
	return true, nil
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
