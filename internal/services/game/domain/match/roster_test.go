package match

import (
	"reflect"
	"testing"

	apperrors "github.com/louisbranch/atlas/internal/platform/errors"
	"github.com/louisbranch/atlas/internal/services/game/domain/journal"
)

func TestAddPlayerStagesBeforeStart(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	if err := engine.AddPlayer("Ana"); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	if err := engine.AddPlayer("ana"); apperrors.CodeOf(err) != apperrors.CodeDuplicateName {
		t.Fatalf("AddPlayer(ana) code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeDuplicateName)
	}

	state, err := engine.StartNewMatch([]string{"Bo"}, []string{"spain"})
	if err != nil {
		t.Fatalf("StartNewMatch: %v", err)
	}
	if len(state.Players) != 2 || state.Players[0].Name != "Ana" || state.Players[1].Name != "Bo" {
		t.Fatalf("players = %+v, want Ana then Bo", state.Players)
	}
}

func TestAddPlayerDuringMatch(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{}
	engine := newTestEngine(t, WithRecorder(recorder))
	restoreTestMatch(t, engine, testSnapshot("s", "Ana", []string{"spain"}, nil, seat("Ana"), seat("Bo")))

	if err := engine.AddPlayer("Cy"); err != nil {
		t.Fatalf("AddPlayer: %v", err)
	}
	if got := rosterNames(engine); !reflect.DeepEqual(got, []string{"Ana", "Bo", "Cy"}) {
		t.Fatalf("roster = %v", got)
	}
	if last := recorder.events[len(recorder.events)-1]; last.kind != journal.KindPlayerAdded {
		t.Fatalf("last event = %q, want %q", last.kind, journal.KindPlayerAdded)
	}

	for _, name := range []string{"Di", "Ed"} {
		if err := engine.AddPlayer(name); err != nil {
			t.Fatalf("AddPlayer(%s): %v", name, err)
		}
	}
	if err := engine.AddPlayer("Fa"); apperrors.CodeOf(err) != apperrors.CodeInvalidRosterSize {
		t.Fatalf("sixth player code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeInvalidRosterSize)
	}
	if err := engine.AddPlayer(" "); apperrors.CodeOf(err) != apperrors.CodeEmptyName {
		t.Fatalf("blank player code = %v, want %v", apperrors.CodeOf(err), apperrors.CodeEmptyName)
	}
}

func TestAddPlayerAfterFinishPanics(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	restoreTestMatch(t, engine, testSnapshot("s", "Ana", []string{"spain"}, nil, seat("Ana", "L", "O", "S", "E"), seat("Bo")))
	engine.PlayTurn("zzz")

	mustPanic(t, "AddPlayer", func() { _ = engine.AddPlayer("Cy") })
}

func TestRenamePlayer(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{}
	engine := newTestEngine(t, WithRecorder(recorder))
	restoreTestMatch(t, engine, testSnapshot("s", "Ana", []string{"spain"}, nil, seat("Ana", "L"), seat("Bo")))

	if err := engine.RenamePlayer("ANA", "Anna"); err != nil {
		t.Fatalf("RenamePlayer: %v", err)
	}
	if engine.ActivePlayer() != "Anna" {
		t.Fatalf("active = %q, want Anna", engine.ActivePlayer())
	}
	if got := engine.Roster()[0].PenaltyLetters(); string(got) != "L" {
		t.Fatalf("letters = %q, want L", string(got))
	}
	if last := recorder.events[len(recorder.events)-1]; last.message != "Modified Ana to Anna." {
		t.Fatalf("last message = %q", last.message)
	}

	if err := engine.RenamePlayer("bo", "BO"); err != nil {
		t.Fatalf("RenamePlayer to own name: %v", err)
	}

	tests := []struct {
		name    string
		current string
		next    string
		code    apperrors.Code
	}{
		{name: "unknown player", current: "Cy", next: "Cyd", code: apperrors.CodePlayerNotFound},
		{name: "taken name", current: "Anna", next: "bo", code: apperrors.CodeDuplicateName},
		{name: "blank name", current: "Anna", next: "  ", code: apperrors.CodeEmptyName},
	}
	for _, tt := range tests {
		err := engine.RenamePlayer(tt.current, tt.next)
		if got := apperrors.CodeOf(err); got != tt.code {
			t.Fatalf("%s: code = %v, want %v", tt.name, got, tt.code)
		}
	}
	if meta := apperrors.MetadataOf(engine.RenamePlayer("Cy", "x")); meta["Name"] != "Cy" {
		t.Fatalf("metadata = %v, want Name Cy", meta)
	}
}
