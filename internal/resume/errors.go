package resume

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAuthenticated is returned when no caller identity is bound to the context.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrProfileNotFound means the identity has no version profile. After
	// profile creation this indicates a consistency bug, not a user error.
	ErrProfileNotFound = errors.New("resume profile not found")
	// ErrVersionNotFound is returned by restore when the version is not in
	// history; callers should refresh their view of history.
	ErrVersionNotFound = errors.New("history version not found")
	// ErrMalformedCandidate means generator output could not be decoded as a document.
	ErrMalformedCandidate = errors.New("malformed candidate document")
	ErrProfileExists      = errors.New("resume profile already exists")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrInvalidDocument    = errors.New("invalid document")
	ErrInvalidUsername    = errors.New("invalid username")
)

// GenerationError wraps a generator gateway failure. Reason is safe to show
// to the user.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "generation failed: " + e.Reason
	}
	return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
