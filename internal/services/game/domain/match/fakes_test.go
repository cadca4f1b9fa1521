package match

import (
	"math/rand"
	"testing"

	"github.com/louisbranch/atlas/internal/services/game/domain/journal"
	"github.com/louisbranch/atlas/internal/services/game/domain/player"
)

type recordedEvent struct {
	kind    journal.Kind
	message string
}

type fakeRecorder struct {
	events []recordedEvent
}

func (r *fakeRecorder) Record(kind journal.Kind, message string) {
	r.events = append(r.events, recordedEvent{kind: kind, message: message})
}

func (r *fakeRecorder) kinds() []journal.Kind {
	out := make([]journal.Kind, 0, len(r.events))
	for _, event := range r.events {
		out = append(out, event.kind)
	}
	return out
}

func fixedID(value string) func() (string, error) {
	return func() (string, error) { return value, nil }
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithIDGenerator(fixedID("match-1")),
		WithRand(rand.New(rand.NewSource(7))),
	}
	engine, err := New(append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return engine
}

// restoreTestMatch puts engine into a known in-progress state.
func restoreTestMatch(t *testing.T, engine *Engine, snap Snapshot) {
	t.Helper()
	if _, err := engine.RestoreMatch(snap, nil); err != nil {
		t.Fatalf("RestoreMatch: %v", err)
	}
}

func testSnapshot(letter, active string, remaining, used []string, players ...player.Snapshot) Snapshot {
	if remaining == nil {
		remaining = []string{}
	}
	if used == nil {
		used = []string{}
	}
	return Snapshot{
		MatchID:       "match-1",
		CurrentLetter: letter,
		ActivePlayer:  active,
		Remaining:     remaining,
		Used:          used,
		Players:       players,
	}
}

func seat(name string, letters ...string) player.Snapshot {
	if letters == nil {
		letters = []string{}
	}
	return player.Snapshot{Name: name, Letters: letters}
}

func penaltiesOf(t *testing.T, engine *Engine, name string) *player.Player {
	t.Helper()
	for _, p := range engine.Roster() {
		if p.Name() == name {
			return p
		}
	}
	t.Fatalf("player %q not in roster", name)
	return nil
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s did not panic", name)
		}
	}()
	fn()
}
