// Package player models one participant and the penalty letters they have
// collected.
//
// A player is eliminated by the raw number of penalties received, not by the
// number of distinct letters on display: assigning a letter that is already
// held still counts.
package player

import (
	"strings"
	"unicode/utf8"

	apperrors "github.com/louisbranch/atlas/internal/platform/errors"
)

// DefaultPenaltyWord is the word whose letters are handed out for misses.
const DefaultPenaltyWord = "LOSER"

// ErrEmptyName indicates a blank player name.
var ErrEmptyName = apperrors.New(apperrors.CodeEmptyName, "player name is required")

// Player is one roster entry.
type Player struct {
	name    string
	letters []rune
	count   int
}

// Snapshot is the at-rest form of a player.
type Snapshot struct {
	Name    string   `json:"name"`
	Letters []string `json:"lettersAssigned"`
	// Count is only written when it differs from len(Letters).
	Count int `json:"penaltyCount,omitempty"`
}

// Slot is one letter of the penalty word as shown to players.
type Slot struct {
	Letter   rune
	Assigned bool
}

// New creates a player with no penalties.
func New(name string) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Player{name: name}, nil
}

// Name returns the display name.
func (p *Player) Name() string {
	return p.name
}

// Rename replaces the display name. Roster-wide uniqueness is the caller's job.
func (p *Player) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	p.name = name
	return nil
}

// AssignPenalty records a miss. The letter is appended only when not already
// held; the counter always moves.
func (p *Player) AssignPenalty(letter rune) {
	if !p.HasLetter(letter) {
		p.letters = append(p.letters, letter)
	}
	p.count++
}

// HasLetter reports whether letter was already assigned.
func (p *Player) HasLetter(letter rune) bool {
	for _, held := range p.letters {
		if held == letter {
			return true
		}
	}
	return false
}

// PenaltyLetters returns the assigned letters in assignment order.
func (p *Player) PenaltyLetters() []rune {
	out := make([]rune, len(p.letters))
	copy(out, p.letters)
	return out
}

// PenaltyCount returns the number of penalties received.
func (p *Player) PenaltyCount() int {
	return p.count
}

// IsEliminated reports whether the player has received a penalty for every
// letter of a penalty word of the given length.
func (p *Player) IsEliminated(penaltyWordLength int) bool {
	return p.count >= penaltyWordLength
}

// PenaltyDisplay maps each letter of penaltyWord to whether the player holds it.
func (p *Player) PenaltyDisplay(penaltyWord string) []Slot {
	slots := make([]Slot, 0, utf8.RuneCountInString(penaltyWord))
	for _, letter := range penaltyWord {
		slots = append(slots, Slot{Letter: letter, Assigned: p.HasLetter(letter)})
	}
	return slots
}

// Clone returns an independent copy.
func (p *Player) Clone() *Player {
	return &Player{name: p.name, letters: p.PenaltyLetters(), count: p.count}
}

// Snapshot returns the at-rest form of the player.
func (p *Player) Snapshot() Snapshot {
	letters := make([]string, 0, len(p.letters))
	for _, letter := range p.letters {
		letters = append(letters, string(letter))
	}
	snap := Snapshot{Name: p.name, Letters: letters}
	if p.count != len(p.letters) {
		snap.Count = p.count
	}
	return snap
}

// FromSnapshot rebuilds a player. Every letter entry must be exactly one rune
// and an explicit count cannot be below the number of letters.
func FromSnapshot(snap Snapshot) (*Player, error) {
	p, err := New(snap.Name)
	if err != nil {
		return nil, err
	}
	for _, entry := range snap.Letters {
		if utf8.RuneCountInString(entry) != 1 {
			return nil, apperrors.WithMetadata(apperrors.CodeInvalidSnapshot,
				"penalty letter must be a single character",
				map[string]string{"Name": p.name, "Letter": entry})
		}
		letter, _ := utf8.DecodeRuneInString(entry)
		if !p.HasLetter(letter) {
			p.letters = append(p.letters, letter)
		}
	}
	p.count = len(p.letters)
	if snap.Count != 0 {
		if snap.Count < len(p.letters) {
			return nil, apperrors.WithMetadata(apperrors.CodeInvalidSnapshot,
				"penalty count is below the number of letters",
				map[string]string{"Name": p.name})
		}
		p.count = snap.Count
	}
	return p, nil
}
