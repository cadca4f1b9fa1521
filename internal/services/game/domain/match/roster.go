package match

import (
	"fmt"
	"strings"

	"github.com/louisbranch/atlas/internal/services/game/domain/journal"
	"github.com/louisbranch/atlas/internal/services/game/domain/player"
)

// AddPlayer adds a player to the roster. Before a match starts the player is
// staged for StartNewMatch; during a match they join at the end of the turn
// order with no penalties. After an abort the engine returns to setup with an
// empty roster. It panics once the match has finished.
func (e *Engine) AddPlayer(name string) error {
	if e.status == StatusFinished {
		panic("match: AddPlayer on a finished match")
	}
	if e.status == StatusAborted {
		e.status = StatusSetup
		e.reset()
	}
	p, err := player.New(name)
	if err != nil {
		return err
	}
	if len(e.roster) >= e.rules.MaxPlayers {
		return rosterSizeError(e.rules, len(e.roster)+1)
	}
	if e.indexOf(p.Name()) >= 0 {
		return duplicateNameError(p.Name())
	}
	e.roster = append(e.roster, p)
	if e.status == StatusInProgress {
		e.recorder.Record(journal.KindPlayerAdded, p.Name()+" added as a player.")
	}
	return nil
}

// RenamePlayer renames the first player whose name matches current under case
// folding. The new name must not collide with another player.
func (e *Engine) RenamePlayer(current, next string) error {
	i := e.indexOf(current)
	if i < 0 {
		return playerNotFoundError(strings.TrimSpace(current))
	}
	next = strings.TrimSpace(next)
	if next == "" {
		return ErrEmptyName
	}
	if j := e.indexOf(next); j >= 0 && j != i {
		return duplicateNameError(next)
	}
	p := e.roster[i]
	previous := p.Name()
	if err := p.Rename(next); err != nil {
		return err
	}
	e.recorder.Record(journal.KindPlayerRenamed, fmt.Sprintf("Modified %s to %s.", previous, next))
	return nil
}

func (e *Engine) indexOf(name string) int {
	key := foldName(name)
	for i, p := range e.roster {
		if foldName(p.Name()) == key {
			return i
		}
	}
	return -1
}
