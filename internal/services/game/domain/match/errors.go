package match

import (
	"strconv"

	apperrors "github.com/louisbranch/atlas/internal/platform/errors"
)

// Sentinels for errors.Is checks; matching is by code, so errors carrying
// metadata still match.
var (
	ErrInvalidRosterSize = apperrors.New(apperrors.CodeInvalidRosterSize, "invalid roster size")
	ErrDuplicateName     = apperrors.New(apperrors.CodeDuplicateName, "duplicate player name")
	ErrEmptyName         = apperrors.New(apperrors.CodeEmptyName, "player name is required")
	ErrPlayerNotFound    = apperrors.New(apperrors.CodePlayerNotFound, "player not found")
	ErrInvalidSnapshot   = apperrors.New(apperrors.CodeInvalidSnapshot, "invalid snapshot")
)

func rosterSizeError(rules Rules, count int) error {
	return apperrors.WithMetadata(apperrors.CodeInvalidRosterSize, "roster size out of range", map[string]string{
		"Min":   strconv.Itoa(rules.MinPlayers),
		"Max":   strconv.Itoa(rules.MaxPlayers),
		"Count": strconv.Itoa(count),
	})
}

func duplicateNameError(name string) error {
	return apperrors.WithMetadata(apperrors.CodeDuplicateName, "duplicate player name", map[string]string{"Name": name})
}

func playerNotFoundError(name string) error {
	return apperrors.WithMetadata(apperrors.CodePlayerNotFound, "player not found", map[string]string{"Name": name})
}

func invalidSnapshot(message string) error {
	return apperrors.New(apperrors.CodeInvalidSnapshot, message)
}

func invalidSnapshotCause(message string, cause error) error {
	return apperrors.Wrap(apperrors.CodeInvalidSnapshot, message, cause)
}
