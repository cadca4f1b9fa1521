// Package journal keeps the ordered, process-local log of notable match events.
package journal

import (
	"sync"
	"time"
)

// Kind classifies a journal entry.
type Kind string

const (
	KindMatchStarted     Kind = "match.started"
	KindMatchRestored    Kind = "match.restored"
	KindMatchAborted     Kind = "match.aborted"
	KindMatchWon         Kind = "match.won"
	KindMatchSaved       Kind = "match.saved"
	KindPlayerAdded      Kind = "player.added"
	KindPlayerRenamed    Kind = "player.renamed"
	KindPlayerEliminated Kind = "player.eliminated"
	KindAnswerAccepted   Kind = "answer.accepted"
	KindAnswerRejected   Kind = "answer.rejected"
	KindPenaltyAssigned  Kind = "penalty.assigned"
	KindRosterDisplayed  Kind = "roster.displayed"
	KindExited           Kind = "process.exited"
)

// Entry is one recorded event.
type Entry struct {
	Seq       uint64
	Timestamp time.Time
	Kind      Kind
	Message   string
}

// Journal is an append-only in-memory event list. The zero value is not
// usable; call New.
type Journal struct {
	mu      sync.Mutex
	clock   func() time.Time
	entries []Entry
}

// New creates a journal. A nil clock uses time.Now.
func New(clock func() time.Time) *Journal {
	if clock == nil {
		clock = time.Now
	}
	return &Journal{clock: clock}
}

// Record appends an entry stamped with the journal clock in UTC.
func (j *Journal) Record(kind Kind, message string) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries = append(j.entries, Entry{
		Seq:       uint64(len(j.entries)) + 1,
		Timestamp: j.clock().UTC(),
		Kind:      kind,
		Message:   message,
	})
}

// Entries returns a copy of all entries in recording order.
func (j *Journal) Entries() []Entry {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]Entry, len(j.entries))
	copy(out, j.entries)
	return out
}

// Len returns the number of recorded entries.
func (j *Journal) Len() int {
	if j == nil {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}
