// Package errors provides structured domain errors with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Roster errors
	CodeInvalidRosterSize Code = "INVALID_ROSTER_SIZE"
	CodeDuplicateName     Code = "DUPLICATE_NAME"
	CodeEmptyName         Code = "EMPTY_NAME"
	CodePlayerNotFound    Code = "PLAYER_NOT_FOUND"

	// Snapshot and storage errors
	CodeInvalidSnapshot    Code = "INVALID_SNAPSHOT"
	CodePersistenceFailure Code = "PERSISTENCE_FAILURE"
)

// Recoverable reports whether a driver may retry or carry on after the error.
// Every defined code is a user-level condition; unknown codes are not.
func (c Code) Recoverable() bool {
	switch c {
	case CodeInvalidRosterSize,
		CodeDuplicateName,
		CodeEmptyName,
		CodePlayerNotFound,
		CodeInvalidSnapshot,
		CodePersistenceFailure:
		return true
	default:
		return false
	}
}
