package scenario

import (
	"strings"

	"github.com/louisbranch/atlas/internal/services/game/app"
	"github.com/louisbranch/atlas/internal/services/game/domain/journal"
	"github.com/louisbranch/atlas/internal/services/game/domain/match"
	"github.com/louisbranch/atlas/internal/services/game/domain/player"
	"github.com/louisbranch/atlas/internal/services/game/storage/memory"
)

type scenarioState struct {
	dictionary []string
	rules      match.Rules
	store      *memory.Store
	journal    *journal.Journal
	engine     *match.Engine
	session    *app.Session
	staged     []string
	eliminated []string
}

func (r *Runner) failf(format string, args ...any) error {
	return r.assertions.Failf(format, args...)
}

func (r *Runner) assertf(format string, args ...any) error {
	return r.assertions.Assertf(format, args...)
}

func (r *Runner) requireEngine(state *scenarioState) error {
	if state.engine == nil {
		return r.failf("no match has been started")
	}
	return nil
}

func (r *Runner) requireInProgress(state *scenarioState) error {
	if err := r.requireEngine(state); err != nil {
		return err
	}
	if status := state.engine.Status(); status != match.StatusInProgress {
		return r.failf("match is %s", status)
	}
	return nil
}

func findPlayer(roster []*player.Player, name string) *player.Player {
	for _, p := range roster {
		if p.Name() == name {
			return p
		}
	}
	for _, p := range roster {
		if strings.EqualFold(p.Name(), name) {
			return p
		}
	}
	return nil
}

func rosterNames(roster []*player.Player) []string {
	names := make([]string, 0, len(roster))
	for _, p := range roster {
		names = append(names, p.Name())
	}
	return names
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func requiredString(args map[string]any, key string) string {
	value, ok := args[key]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if ok && text != "" {
		return text
	}
	return ""
}

func optionalString(args map[string]any, key, fallback string) string {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	text, ok := value.(string)
	if ok && text != "" {
		return text
	}
	return fallback
}

func readInt(args map[string]any, key string) (int, bool) {
	value, ok := args[key]
	if !ok {
		return 0, false
	}
	switch typed := value.(type) {
	case int:
		return typed, true
	case float64:
		return int(typed), true
	default:
		return 0, false
	}
}

func readStrings(args map[string]any, key string) []string {
	value, ok := args[key]
	if !ok {
		return nil
	}
	list, _ := value.([]string)
	return list
}
