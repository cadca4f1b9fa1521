package match

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/louisbranch/atlas/internal/services/game/domain/player"
)

// Snapshot is the at-rest form of an in-progress match. Field names follow
// the save file written by earlier releases so those files keep loading.
type Snapshot struct {
	MatchID       string            `json:"matchId,omitempty"`
	CurrentLetter string            `json:"currentLetter"`
	ActivePlayer  string            `json:"activePlayer"`
	Remaining     []string          `json:"countriesLeft"`
	Used          []string          `json:"countriesAnswered"`
	Players       []player.Snapshot `json:"listOfPlayers"`
}

var requiredSnapshotKeys = []string{
	"currentLetter",
	"activePlayer",
	"countriesLeft",
	"countriesAnswered",
	"listOfPlayers",
}

var requiredPlayerKeys = []string{"name", "lettersAssigned"}

// DecodeSnapshot parses a JSON snapshot object. Non-objects, missing keys and
// mistyped fields are reported as ErrInvalidSnapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return Snapshot{}, invalidSnapshot("snapshot must be a JSON object")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Snapshot{}, invalidSnapshotCause("decode snapshot", err)
	}
	for _, key := range requiredSnapshotKeys {
		if isAbsent(fields, key) {
			return Snapshot{}, invalidSnapshot(fmt.Sprintf("snapshot field %s is missing", key))
		}
	}

	var players []map[string]json.RawMessage
	if err := json.Unmarshal(fields["listOfPlayers"], &players); err != nil {
		return Snapshot{}, invalidSnapshotCause("decode players", err)
	}
	for i, p := range players {
		for _, key := range requiredPlayerKeys {
			if isAbsent(p, key) {
				return Snapshot{}, invalidSnapshot(fmt.Sprintf("player %d field %s is missing", i+1, key))
			}
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, invalidSnapshotCause("decode snapshot", err)
	}
	return snap, nil
}

func isAbsent(fields map[string]json.RawMessage, key string) bool {
	raw, ok := fields[key]
	return !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// EncodeSnapshot renders snap as compact JSON.
func EncodeSnapshot(snap Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Remaining = cloneStrings(s.Remaining)
	out.Used = cloneStrings(s.Used)
	if s.Players != nil {
		out.Players = make([]player.Snapshot, len(s.Players))
		for i, p := range s.Players {
			p.Letters = cloneStrings(p.Letters)
			out.Players[i] = p
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
