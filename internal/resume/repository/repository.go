package repository

import (
	"context"
	"errors"

	"github.com/resumefire/backend/go-services/internal/resume"
)

var (
	// ErrConflict is returned when an optimistic update kept losing races
	// with other writers for the same identity.
	ErrConflict = errors.New("concurrent profile update conflict")
)

// maxAttempts bounds optimistic retry loops in the remote backends.
const maxAttempts = 10

// MutateFunc edits a profile in place. Returning an error aborts the update
// and nothing is written. It may run more than once when a backend retries,
// so it must only touch the profile it is given.
type MutateFunc func(p *resume.Profile) error

// Repository stores version profiles keyed by user identity.
//
// Update is a read-modify-write that is atomic per identity: no other write
// to the same profile interleaves between the read handed to fn and the
// write of its result. Profiles of different identities are independent.
// Returned profiles are copies owned by the caller.
type Repository interface {
	Create(ctx context.Context, p *resume.Profile) error
	Get(ctx context.Context, userID string) (*resume.Profile, error)
	GetByUsername(ctx context.Context, username string) (*resume.Profile, error)
	Update(ctx context.Context, userID string, fn MutateFunc) (*resume.Profile, error)
}
