package match

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/louisbranch/atlas/internal/services/game/domain/player"
)

const (
	// DefaultSeedWord supplies the candidate opening letters.
	DefaultSeedWord = "atlas"
	// DefaultMinPlayers is the smallest roster a match accepts.
	DefaultMinPlayers = 1
	// DefaultMaxPlayers is the largest roster a match accepts.
	DefaultMaxPlayers = 5
)

// Rules are the fixed parameters of a match.
type Rules struct {
	PenaltyWord string
	SeedWord    string
	MinPlayers  int
	MaxPlayers  int
}

// DefaultRules returns the classic LOSER/atlas rules for 1 to 5 players.
func DefaultRules() Rules {
	return Rules{
		PenaltyWord: player.DefaultPenaltyWord,
		SeedWord:    DefaultSeedWord,
		MinPlayers:  DefaultMinPlayers,
		MaxPlayers:  DefaultMaxPlayers,
	}
}

// Validate reports whether the rules can drive a match.
func (r Rules) Validate() error {
	if strings.TrimSpace(r.PenaltyWord) == "" {
		return fmt.Errorf("penalty word is required")
	}
	if strings.TrimSpace(r.SeedWord) == "" {
		return fmt.Errorf("seed word is required")
	}
	if r.MinPlayers < 1 {
		return fmt.Errorf("min players must be at least 1, got %d", r.MinPlayers)
	}
	if r.MaxPlayers < r.MinPlayers {
		return fmt.Errorf("max players %d is below min players %d", r.MaxPlayers, r.MinPlayers)
	}
	return nil
}

// PenaltyLength is the number of penalties that eliminates a player.
func (r Rules) PenaltyLength() int {
	return utf8.RuneCountInString(r.PenaltyWord)
}

// penaltyLetter returns the letter handed out for the penalty after count
// earlier ones. Counts past the end keep returning the last letter.
func (r Rules) penaltyLetter(count int) rune {
	letters := []rune(r.PenaltyWord)
	if count >= len(letters) {
		count = len(letters) - 1
	}
	if count < 0 {
		count = 0
	}
	return letters[count]
}

func (r Rules) normalized() Rules {
	r.PenaltyWord = strings.TrimSpace(r.PenaltyWord)
	r.SeedWord = strings.ToLower(strings.TrimSpace(r.SeedWord))
	return r
}
