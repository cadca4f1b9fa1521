// Package match implements the turn machine of a place-name elimination game.
//
// An Engine owns one match: its roster, the shared word pool, the required
// letter and whose turn it is. Drivers feed it answers through SubmitAnswer
// (or PlayTurn) and render the returned values; the engine never performs
// I/O. A single Engine must not be used from several goroutines at once.
package match

import (
	"fmt"
	"math/rand"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/louisbranch/atlas/internal/platform/id"
	"github.com/louisbranch/atlas/internal/random"
	"github.com/louisbranch/atlas/internal/services/game/domain/journal"
	"github.com/louisbranch/atlas/internal/services/game/domain/player"
)

// Recorder receives notable match events.
type Recorder interface {
	Record(kind journal.Kind, message string)
}

type nopRecorder struct{}

func (nopRecorder) Record(journal.Kind, string) {}

// Option configures an Engine.
type Option func(*Engine)

// WithRules overrides the default rules.
func WithRules(rules Rules) Option {
	return func(e *Engine) { e.rules = rules }
}

// WithRand sets the source used for the opening letter and first player.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithRecorder sends match events to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithIDGenerator overrides how match ids are minted.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// State is a read-only view of a match.
type State struct {
	MatchID       string
	Status        Status
	CurrentLetter rune
	ActivePlayer  string
	Players       []player.Snapshot
	Remaining     []string
	Used          []string
	Winner        string
}

// Engine drives one match.
type Engine struct {
	rules    Rules
	rng      *rand.Rand
	recorder Recorder
	newID    func() (string, error)

	matchID   string
	status    Status
	roster    []*player.Player
	active    int
	letter    rune
	remaining []string
	used      []string
	inPool    map[string]struct{}
	inUsed    map[string]struct{}
	winner    string
	// activeRemoved marks that the last elimination pass removed the active
	// player, so active already points at the next one in turn.
	activeRemoved bool
}

// New creates an engine in StatusSetup.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		rules:    DefaultRules(),
		recorder: nopRecorder{},
		newID:    id.NewID,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.rules = e.rules.normalized()
	if err := e.rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	if e.rng == nil {
		rng, err := random.NewRand(0)
		if err != nil {
			return nil, fmt.Errorf("seed engine: %w", err)
		}
		e.rng = rng
	}
	return e, nil
}

// StartNewMatch builds the roster from any players staged with AddPlayer
// followed by names, loads the dictionary into the word pool and draws the
// opening letter and player.
func (e *Engine) StartNewMatch(names []string, dictionary []string) (State, error) {
	roster := make([]*player.Player, 0, len(e.stagedRoster())+len(names))
	roster = append(roster, e.stagedRoster()...)
	for _, name := range names {
		p, err := player.New(name)
		if err != nil {
			return State{}, err
		}
		roster = append(roster, p)
	}
	if len(roster) < e.rules.MinPlayers || len(roster) > e.rules.MaxPlayers {
		return State{}, rosterSizeError(e.rules, len(roster))
	}
	if dup, ok := firstDuplicate(roster); ok {
		return State{}, duplicateNameError(dup)
	}
	matchID, err := e.newID()
	if err != nil {
		return State{}, fmt.Errorf("start match: %w", err)
	}

	seed := []rune(e.rules.SeedWord)
	e.reset()
	e.matchID = matchID
	e.roster = roster
	e.remaining = NormalizeWords(dictionary)
	e.used = []string{}
	e.rebuildIndexes()
	e.letter = seed[e.rng.Intn(len(seed))]
	e.active = e.rng.Intn(len(roster))
	e.status = StatusInProgress

	e.recorder.Record(journal.KindMatchStarted, "Game started.")
	for _, p := range roster {
		e.recorder.Record(journal.KindPlayerAdded, p.Name()+" added as a player.")
	}
	return e.State(), nil
}

// RestoreMatch rebuilds a match from a snapshot. The word partitions are
// taken from the snapshot verbatim; dictionary is not consulted.
func (e *Engine) RestoreMatch(snap Snapshot, dictionary []string) (State, error) {
	if utf8.RuneCountInString(snap.CurrentLetter) != 1 {
		return State{}, invalidSnapshot("current letter must be a single character")
	}
	if len(snap.Players) == 0 {
		return State{}, invalidSnapshot("snapshot has no players")
	}
	if len(snap.Players) > e.rules.MaxPlayers {
		return State{}, invalidSnapshot(fmt.Sprintf("snapshot has %d players, limit is %d", len(snap.Players), e.rules.MaxPlayers))
	}
	if snap.Remaining == nil || snap.Used == nil {
		return State{}, invalidSnapshot("snapshot word lists are missing")
	}

	roster := make([]*player.Player, 0, len(snap.Players))
	active := -1
	for i, ps := range snap.Players {
		p, err := player.FromSnapshot(ps)
		if err != nil {
			return State{}, invalidSnapshotCause(fmt.Sprintf("restore player %d", i+1), err)
		}
		if p.IsEliminated(e.rules.PenaltyLength()) {
			return State{}, invalidSnapshot(fmt.Sprintf("player %s is already eliminated", p.Name()))
		}
		if active < 0 && p.Name() == snap.ActivePlayer {
			active = i
		}
		roster = append(roster, p)
	}
	if active < 0 {
		return State{}, invalidSnapshot(fmt.Sprintf("active player %q is not in the roster", snap.ActivePlayer))
	}

	matchID := snap.MatchID
	if matchID == "" {
		generated, err := e.newID()
		if err != nil {
			return State{}, fmt.Errorf("restore match: %w", err)
		}
		matchID = generated
	}

	letter, _ := utf8.DecodeRuneInString(strings.ToLower(snap.CurrentLetter))
	e.reset()
	e.matchID = matchID
	e.roster = roster
	e.active = active
	e.letter = letter
	e.remaining = cloneStrings(snap.Remaining)
	e.used = cloneStrings(snap.Used)
	e.rebuildIndexes()
	e.status = StatusInProgress

	e.recorder.Record(journal.KindMatchRestored, "Game loaded.")
	return e.State(), nil
}

// SubmitAnswer validates raw against the current letter and word pool. Any
// rejection hands the active player the next letter of the penalty word.
// It panics unless the match is in progress.
func (e *Engine) SubmitAnswer(raw string) Result {
	e.mustBeInProgress("SubmitAnswer")

	answer := strings.ToLower(strings.TrimSpace(raw))
	current := e.roster[e.active]
	result := Result{Answer: answer, Player: current.Name()}

	first, _ := utf8.DecodeRuneInString(answer)
	_, pooled := e.inPool[answer]
	_, used := e.inUsed[answer]
	switch {
	case answer == "" || first != e.letter:
		result.Outcome = OutcomeWrongLetter
	case !pooled && !used:
		result.Outcome = OutcomeInvalidWord
	case used:
		result.Outcome = OutcomeAlreadyUsed
	default:
		result.Outcome = OutcomeAccepted
	}

	if result.Outcome == OutcomeAccepted {
		e.consume(answer)
		last, _ := utf8.DecodeLastRuneInString(answer)
		e.letter = last
		e.recorder.Record(journal.KindAnswerAccepted, fmt.Sprintf("%s answered %s.", current.Name(), answer))
	} else {
		penalty := e.rules.penaltyLetter(current.PenaltyCount())
		current.AssignPenalty(penalty)
		result.Penalty = penalty
		e.recorder.Record(journal.KindAnswerRejected, fmt.Sprintf("%s answered %q: %s.", current.Name(), answer, result.Outcome))
		e.recorder.Record(journal.KindPenaltyAssigned, fmt.Sprintf("Letter '%c' assigned to %s.", penalty, current.Name()))
	}
	result.PenaltyCount = current.PenaltyCount()
	result.Letter = e.letter
	return result
}

// RunEliminationPass removes eliminated players in roster order. When a
// removal leaves exactly one player the match finishes with that winner and
// the pass stops; a roster emptied by the pass finishes with no winner.
func (e *Engine) RunEliminationPass() Elimination {
	var out Elimination
	if e.status != StatusInProgress {
		return out
	}

	limit := e.rules.PenaltyLength()
	for i := 0; i < len(e.roster); {
		p := e.roster[i]
		if !p.IsEliminated(limit) {
			i++
			continue
		}
		e.removeAt(i)
		out.Eliminated = append(out.Eliminated, p.Name())
		e.recorder.Record(journal.KindPlayerEliminated, p.Name()+" eliminated.")
		if len(e.roster) == 1 {
			e.finish(e.roster[0].Name())
			out.Winner = e.winner
			out.Finished = true
			return out
		}
	}
	if len(e.roster) == 0 {
		e.finish("")
		out.Finished = true
	}
	return out
}

// AdvanceTurn passes the turn to the next player. If the previous pass
// removed the active player the turn already sits with their follower. It
// panics unless the match is in progress with a non-empty roster.
func (e *Engine) AdvanceTurn() {
	e.mustBeInProgress("AdvanceTurn")
	if len(e.roster) == 0 {
		panic("match: AdvanceTurn with an empty roster")
	}
	if e.activeRemoved {
		e.activeRemoved = false
		return
	}
	e.active = (e.active + 1) % len(e.roster)
}

// PlayTurn submits raw, runs the elimination pass and advances the turn when
// the match is still running.
func (e *Engine) PlayTurn(raw string) (Result, Elimination) {
	result := e.SubmitAnswer(raw)
	elimination := e.RunEliminationPass()
	if e.status == StatusInProgress {
		e.AdvanceTurn()
	}
	return result, elimination
}

// Reset discards the current match and any staged players.
func (e *Engine) Reset() {
	e.reset()
	e.status = StatusSetup
}

// Abort ends a running match without a winner.
func (e *Engine) Abort() {
	if e.status != StatusInProgress {
		return
	}
	e.status = StatusAborted
	e.recorder.Record(journal.KindMatchAborted, "Match aborted.")
}

// Snapshot captures the match for persistence. It panics when there is no
// roster to capture.
func (e *Engine) Snapshot() Snapshot {
	if e.status == StatusSetup || len(e.roster) == 0 {
		panic("match: Snapshot without a running match")
	}
	players := make([]player.Snapshot, 0, len(e.roster))
	for _, p := range e.roster {
		players = append(players, p.Snapshot())
	}
	return Snapshot{
		MatchID:       e.matchID,
		CurrentLetter: string(e.letter),
		ActivePlayer:  e.roster[e.active].Name(),
		Remaining:     cloneStrings(e.remaining),
		Used:          cloneStrings(e.used),
		Players:       players,
	}
}

// State returns a copy of the match state.
func (e *Engine) State() State {
	players := make([]player.Snapshot, 0, len(e.roster))
	for _, p := range e.roster {
		players = append(players, p.Snapshot())
	}
	return State{
		MatchID:       e.matchID,
		Status:        e.status,
		CurrentLetter: e.letter,
		ActivePlayer:  e.ActivePlayer(),
		Players:       players,
		Remaining:     cloneStrings(e.remaining),
		Used:          cloneStrings(e.used),
		Winner:        e.winner,
	}
}

// Roster returns copies of the players in turn order.
func (e *Engine) Roster() []*player.Player {
	out := make([]*player.Player, 0, len(e.roster))
	for _, p := range e.roster {
		out = append(out, p.Clone())
	}
	return out
}

// ActivePlayer returns the name of the player whose turn it is.
func (e *Engine) ActivePlayer() string {
	if e.status == StatusSetup || len(e.roster) == 0 {
		return ""
	}
	return e.roster[e.active].Name()
}

// CurrentLetter returns the required first letter.
func (e *Engine) CurrentLetter() rune { return e.letter }

// Status returns the lifecycle phase.
func (e *Engine) Status() Status { return e.status }

// Winner returns the last player standing, if any.
func (e *Engine) Winner() string { return e.winner }

// RemainingWords returns the words that can still be answered.
func (e *Engine) RemainingWords() []string { return cloneStrings(e.remaining) }

// UsedWords returns the accepted answers in order.
func (e *Engine) UsedWords() []string { return cloneStrings(e.used) }

// MatchID returns the id minted when the match started.
func (e *Engine) MatchID() string { return e.matchID }

// Rules returns the rules the engine was built with.
func (e *Engine) Rules() Rules { return e.rules }

// NormalizeWords lowercases and trims words, dropping blanks and repeats
// while keeping first-seen order.
func NormalizeWords(words []string) []string {
	out := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		out = append(out, word)
	}
	return out
}

func (e *Engine) reset() {
	e.matchID = ""
	e.roster = nil
	e.active = 0
	e.letter = 0
	e.remaining = nil
	e.used = nil
	e.winner = ""
	e.activeRemoved = false
}

func (e *Engine) rebuildIndexes() {
	e.inPool = make(map[string]struct{}, len(e.remaining))
	for _, word := range e.remaining {
		e.inPool[word] = struct{}{}
	}
	e.inUsed = make(map[string]struct{}, len(e.used))
	for _, word := range e.used {
		e.inUsed[word] = struct{}{}
	}
}

func (e *Engine) consume(word string) {
	for i, candidate := range e.remaining {
		if candidate == word {
			e.remaining = append(e.remaining[:i], e.remaining[i+1:]...)
			break
		}
	}
	delete(e.inPool, word)
	e.used = append(e.used, word)
	e.inUsed[word] = struct{}{}
}

func (e *Engine) removeAt(i int) {
	e.roster = append(e.roster[:i], e.roster[i+1:]...)
	switch {
	case i < e.active:
		e.active--
	case i == e.active:
		e.activeRemoved = true
	}
	if e.active >= len(e.roster) {
		e.active = 0
	}
}

func (e *Engine) finish(winner string) {
	e.status = StatusFinished
	e.winner = winner
	e.activeRemoved = false
	if winner != "" {
		e.recorder.Record(journal.KindMatchWon, winner+" has won the game.")
	}
}

func (e *Engine) mustBeInProgress(op string) {
	if e.status != StatusInProgress {
		panic(fmt.Sprintf("match: %s while %s", op, e.status))
	}
}

// stagedRoster returns players added before the match started.
func (e *Engine) stagedRoster() []*player.Player {
	if e.status != StatusSetup {
		return nil
	}
	return e.roster
}

func foldName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func firstDuplicate(roster []*player.Player) (string, bool) {
	seen := make(map[string]struct{}, len(roster))
	for _, p := range roster {
		key := foldName(p.Name())
		if _, ok := seen[key]; ok {
			return p.Name(), true
		}
		seen[key] = struct{}{}
	}
	return "", false
}
