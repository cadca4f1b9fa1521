package scenario

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/louisbranch/atlas/internal/platform/errors"
	"github.com/louisbranch/atlas/internal/random"
	"github.com/louisbranch/atlas/internal/services/game/app"
	"github.com/louisbranch/atlas/internal/services/game/domain/match"
)

func (r *Runner) runStep(ctx context.Context, state *scenarioState, step Step) error {
	switch step.Kind {
	case "dictionary":
		return r.runDictionaryStep(state, step)
	case "rules":
		return r.runRulesStep(state, step)
	case "add_player":
		return r.runAddPlayerStep(state, step)
	case "start":
		return r.runStartStep(state, step)
	case "answer":
		return r.runAnswerStep(state, step)
	case "rename":
		return r.runRenameStep(state, step)
	case "abort":
		return r.runAbortStep(state)
	case "save":
		return r.runSaveStep(ctx, state)
	case "load":
		return r.runLoadStep(ctx, state, step)
	case "expect_active":
		return r.runExpectActiveStep(state, step)
	case "expect_letter":
		return r.runExpectLetterStep(state, step)
	case "expect_status":
		return r.runExpectStatusStep(state, step)
	case "expect_penalties":
		return r.runExpectPenaltiesStep(state, step)
	case "expect_eliminated":
		return r.runExpectEliminatedStep(state, step)
	case "expect_winner":
		return r.runExpectWinnerStep(state, step)
	case "expect_roster":
		return r.runExpectRosterStep(state, step)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runDictionaryStep(state *scenarioState, step Step) error {
	words := match.NormalizeWords(readStrings(step.Args, "words"))
	if len(words) == 0 {
		return r.failf("dictionary is empty")
	}
	state.dictionary = words
	return nil
}

func (r *Runner) runRulesStep(state *scenarioState, step Step) error {
	rules := state.rules
	rules.PenaltyWord = optionalString(step.Args, "penalty_word", rules.PenaltyWord)
	rules.SeedWord = optionalString(step.Args, "seed_word", rules.SeedWord)
	if value, ok := readInt(step.Args, "min_players"); ok {
		rules.MinPlayers = value
	}
	if value, ok := readInt(step.Args, "max_players"); ok {
		rules.MaxPlayers = value
	}
	if err := rules.Validate(); err != nil {
		return err
	}
	state.rules = rules
	return nil
}

// add_player joins a running match, otherwise it stages the player for the
// next start.
func (r *Runner) runAddPlayerStep(state *scenarioState, step Step) error {
	name := requiredString(step.Args, "name")
	if state.engine == nil || state.engine.Status() != match.StatusInProgress {
		state.staged = append(state.staged, name)
		return nil
	}
	_, err := r.expectError(step, state.engine.AddPlayer(name))
	return err
}

func (r *Runner) runStartStep(state *scenarioState, step Step) error {
	seed := r.seed
	if value, ok := readInt(step.Args, "seed"); ok {
		seed = int64(value)
	}
	rng, err := random.NewRand(seed)
	if err != nil {
		return err
	}
	engine, err := match.New(
		match.WithRules(state.rules),
		match.WithRand(rng),
		match.WithRecorder(state.journal),
	)
	if err != nil {
		return err
	}
	state.engine = engine
	state.session = app.NewSession(engine, state.store, state.journal)
	state.eliminated = nil

	staged := state.staged
	state.staged = nil
	for _, name := range staged {
		if err := engine.AddPlayer(name); err != nil {
			_, failure := r.expectError(step, err)
			return failure
		}
	}
	_, err = engine.StartNewMatch(readStrings(step.Args, "names"), state.dictionary)
	if done, failure := r.expectError(step, err); done || failure != nil {
		return failure
	}

	letter := optionalString(step.Args, "letter", "")
	active := optionalString(step.Args, "active", "")
	if letter == "" && active == "" {
		r.logf("match %s opens on %q with %s", engine.MatchID(), engine.CurrentLetter(), engine.ActivePlayer())
		return nil
	}

	// Pin the opening by restoring from a snapshot of the fresh match.
	snap := engine.Snapshot()
	if letter != "" {
		snap.CurrentLetter = strings.ToLower(letter)
	}
	if active != "" {
		snap.ActivePlayer = active
	}
	if _, err := engine.RestoreMatch(snap, state.dictionary); err != nil {
		return r.failf("pin opening: %v", err)
	}
	return nil
}

func (r *Runner) runAnswerStep(state *scenarioState, step Step) error {
	if err := r.requireInProgress(state); err != nil {
		return err
	}
	word := requiredString(step.Args, "word")
	result, elimination := state.engine.PlayTurn(word)
	state.eliminated = append(state.eliminated, elimination.Eliminated...)
	r.logf("%s answered %q: %s (letter %q, penalties %d)",
		result.Player, word, result.Outcome, result.Letter, result.PenaltyCount)

	if expected := optionalString(step.Args, "expect", ""); expected != "" {
		outcome, err := match.ParseOutcome(expected)
		if err != nil {
			return r.failf("answer %q: %v", word, err)
		}
		if result.Outcome != outcome {
			if err := r.assertf("answer %q outcome = %s, want %s", word, result.Outcome, outcome); err != nil {
				return err
			}
		}
	}
	if expected := optionalString(step.Args, "penalty", ""); expected != "" {
		if got := penaltyText(result.Penalty); got != expected {
			if err := r.assertf("answer %q penalty = %q, want %q", word, got, expected); err != nil {
				return err
			}
		}
	}
	if expected := optionalString(step.Args, "letter", ""); expected != "" {
		if got := string(result.Letter); got != strings.ToLower(expected) {
			if err := r.assertf("answer %q letter = %q, want %q", word, got, strings.ToLower(expected)); err != nil {
				return err
			}
		}
	}
	if expected := optionalString(step.Args, "eliminated", ""); expected != "" {
		if !contains(elimination.Eliminated, expected) {
			if err := r.assertf("answer %q eliminated = %v, want %s", word, elimination.Eliminated, expected); err != nil {
				return err
			}
		}
	}
	if expected := optionalString(step.Args, "active", ""); expected != "" {
		if got := state.engine.ActivePlayer(); got != expected {
			return r.assertf("after %q active = %q, want %q", word, got, expected)
		}
	}
	return nil
}

func (r *Runner) runRenameStep(state *scenarioState, step Step) error {
	if err := r.requireEngine(state); err != nil {
		return err
	}
	from := requiredString(step.Args, "from")
	to := requiredString(step.Args, "to")
	_, err := r.expectError(step, state.engine.RenamePlayer(from, to))
	return err
}

func (r *Runner) runAbortStep(state *scenarioState) error {
	if err := r.requireInProgress(state); err != nil {
		return err
	}
	state.engine.Abort()
	return nil
}

func (r *Runner) runSaveStep(ctx context.Context, state *scenarioState) error {
	if err := r.requireEngine(state); err != nil {
		return err
	}
	if state.engine.Status() == match.StatusSetup || len(state.engine.Roster()) == 0 {
		return r.failf("nothing to save")
	}
	return state.session.Save(ctx)
}

// load restores the saved match. A fresh engine is used when none exists so a
// scenario can begin from a save made earlier in the same run.
func (r *Runner) runLoadStep(ctx context.Context, state *scenarioState, step Step) error {
	if state.session == nil {
		engine, err := match.New(match.WithRules(state.rules), match.WithRecorder(state.journal))
		if err != nil {
			return err
		}
		state.engine = engine
		state.session = app.NewSession(engine, state.store, state.journal)
	}
	found, err := state.session.Load(ctx, state.dictionary)
	if done, failure := r.expectError(step, err); done || failure != nil {
		return failure
	}
	if !found {
		return r.assertf("no saved match to load")
	}
	return nil
}

func (r *Runner) runExpectActiveStep(state *scenarioState, step Step) error {
	if err := r.requireEngine(state); err != nil {
		return err
	}
	want := requiredString(step.Args, "name")
	if got := state.engine.ActivePlayer(); got != want {
		return r.assertf("active player = %q, want %q", got, want)
	}
	return nil
}

func (r *Runner) runExpectLetterStep(state *scenarioState, step Step) error {
	if err := r.requireEngine(state); err != nil {
		return err
	}
	want := strings.ToLower(requiredString(step.Args, "letter"))
	if utf8.RuneCountInString(want) != 1 {
		return r.failf("expected letter %q must be a single character", want)
	}
	if got := string(state.engine.CurrentLetter()); got != want {
		return r.assertf("current letter = %q, want %q", got, want)
	}
	return nil
}

func (r *Runner) runExpectStatusStep(state *scenarioState, step Step) error {
	if err := r.requireEngine(state); err != nil {
		return err
	}
	want := requiredString(step.Args, "status")
	if got := state.engine.Status().String(); got != want {
		return r.assertf("status = %s, want %s", got, want)
	}
	return nil
}

func (r *Runner) runExpectPenaltiesStep(state *scenarioState, step Step) error {
	if err := r.requireEngine(state); err != nil {
		return err
	}
	name := requiredString(step.Args, "name")
	want := optionalString(step.Args, "letters", "")
	p := findPlayer(state.engine.Roster(), name)
	if p == nil {
		return r.failf("player %q is not in the roster", name)
	}
	if got := string(p.PenaltyLetters()); got != want {
		return r.assertf("%s penalties = %q, want %q", p.Name(), got, want)
	}
	return nil
}

func (r *Runner) runExpectEliminatedStep(state *scenarioState, step Step) error {
	name := requiredString(step.Args, "name")
	if !contains(state.eliminated, name) {
		return r.assertf("eliminated = %v, want %s among them", state.eliminated, name)
	}
	return nil
}

func (r *Runner) runExpectWinnerStep(state *scenarioState, step Step) error {
	if err := r.requireEngine(state); err != nil {
		return err
	}
	if status := state.engine.Status(); status != match.StatusFinished {
		return r.assertf("status = %s, want %s", status, match.StatusFinished)
	}
	want := optionalString(step.Args, "name", "")
	if got := state.engine.Winner(); got != want {
		return r.assertf("winner = %q, want %q", got, want)
	}
	return nil
}

func (r *Runner) runExpectRosterStep(state *scenarioState, step Step) error {
	if err := r.requireEngine(state); err != nil {
		return err
	}
	want := readStrings(step.Args, "names")
	got := rosterNames(state.engine.Roster())
	if !equalStrings(got, want) {
		return r.assertf("roster = %v, want %v", got, want)
	}
	return nil
}

// expectError reconciles err with the step's optional `error` code. done
// reports that the step must stop; failure is what the step returns.
func (r *Runner) expectError(step Step, err error) (done bool, failure error) {
	want := optionalString(step.Args, "error", "")
	if want == "" {
		return err != nil, err
	}
	if err == nil {
		return false, r.assertf("%s succeeded, want error %s", step.Kind, want)
	}
	if got := string(apperrors.CodeOf(err)); got != want {
		return true, r.assertf("%s error = %s (%v), want %s", step.Kind, got, err, want)
	}
	r.logf("%s failed as expected: %v", step.Kind, err)
	return true, nil
}

func penaltyText(letter rune) string {
	if letter == 0 {
		return ""
	}
	return string(letter)
}
