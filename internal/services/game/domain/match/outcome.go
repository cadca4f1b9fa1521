package match

import "fmt"

// Status is the lifecycle phase of a match.
type Status int

const (
	StatusSetup Status = iota
	StatusInProgress
	StatusFinished
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusSetup:
		return "setup"
	case StatusInProgress:
		return "in_progress"
	case StatusFinished:
		return "finished"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome classifies a submitted answer.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeWrongLetter
	OutcomeInvalidWord
	OutcomeAlreadyUsed
)

var outcomeNames = map[Outcome]string{
	OutcomeAccepted:    "accepted",
	OutcomeWrongLetter: "wrong_letter",
	OutcomeInvalidWord: "invalid_word",
	OutcomeAlreadyUsed: "already_used",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// ParseOutcome maps a name produced by Outcome.String back to its value.
func ParseOutcome(name string) (Outcome, error) {
	for outcome, candidate := range outcomeNames {
		if candidate == name {
			return outcome, nil
		}
	}
	return 0, fmt.Errorf("unknown outcome %q", name)
}

// Result reports what one submitted answer did.
type Result struct {
	Outcome Outcome
	// Answer is the normalized answer.
	Answer string
	Player string
	// Penalty is the letter assigned on a rejection, zero otherwise.
	Penalty      rune
	PenaltyCount int
	// Letter is the required first letter after the answer was processed.
	Letter rune
}

// Rejected reports whether the answer earned a penalty.
func (r Result) Rejected() bool {
	return r.Outcome != OutcomeAccepted
}

// Elimination reports what one elimination pass removed.
type Elimination struct {
	Eliminated []string
	// Winner is set when the pass left exactly one player.
	Winner   string
	Finished bool
}
