package app

import (
	"context"
	"io"
	"math/rand"
	"testing"

	"github.com/louisbranch/atlas/internal/services/game/domain/journal"
	"github.com/louisbranch/atlas/internal/services/game/domain/match"
	"github.com/louisbranch/atlas/internal/services/game/domain/player"
)

type fakeStore struct {
	snap    match.Snapshot
	loadErr error
	saveErr error
	saved   []match.Snapshot
}

func (f *fakeStore) LoadSnapshot(context.Context) (match.Snapshot, error) {
	if f.loadErr != nil {
		return match.Snapshot{}, f.loadErr
	}
	return f.snap.Clone(), nil
}

func (f *fakeStore) SaveSnapshot(_ context.Context, snap match.Snapshot) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, snap.Clone())
	return nil
}

func newTestEngine(t *testing.T, j *journal.Journal) *match.Engine {
	t.Helper()
	engine, err := match.New(
		match.WithRand(rand.New(rand.NewSource(3))),
		match.WithIDGenerator(func() (string, error) { return "match-1", nil }),
		match.WithRecorder(j),
	)
	if err != nil {
		t.Fatalf("match.New: %v", err)
	}
	return engine
}

// endgameSnapshot is Ana on 's' one penalty away from elimination against Bo.
func endgameSnapshot() match.Snapshot {
	return match.Snapshot{
		MatchID:       "match-1",
		CurrentLetter: "s",
		ActivePlayer:  "Ana",
		Remaining:     []string{"spain", "nepal", "lebanon"},
		Used:          []string{},
		Players: []player.Snapshot{
			{Name: "Ana", Letters: []string{"L", "O", "S", "E"}},
			{Name: "Bo", Letters: []string{}},
		},
	}
}

// lineReader hands out one line per Read call. before runs ahead of serving
// line i.
type lineReader struct {
	lines  []string
	next   int
	before func(i int)
}

func (r *lineReader) Read(p []byte) (int, error) {
	if r.next >= len(r.lines) {
		return 0, io.EOF
	}
	if r.before != nil {
		r.before(r.next)
	}
	n := copy(p, r.lines[r.next]+"\n")
	r.next++
	return n, nil
}
