// Package service implements the version store: the only code allowed to
// mint version identifiers and move documents between active, history and
// evicted.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/resumefire/backend/go-services/internal/resume"
	"github.com/resumefire/backend/go-services/internal/resume/repository"
	"github.com/resumefire/backend/go-services/pkg/logger"
	"github.com/resumefire/backend/go-services/pkg/metrics"
)

// Archiver receives documents that have left a profile for good. It runs
// after the mutation committed; its failures are logged and never undo the
// mutation.
type Archiver interface {
	Archive(ctx context.Context, userID string, docs []resume.Document) error
}

// Store is the version store. Every operation is scoped to the identity
// bound to ctx (see resume.WithUser).
type Store struct {
	repo     repository.Repository
	archiver Archiver
	now      func() time.Time
	newID    func() string
}

type Option func(*Store)

// errNoMove aborts a section move that would not change the order.
var errNoMove = errors.New("section order unchanged")

// WithArchiver keeps a copy of evicted documents outside the store.
func WithArchiver(a Archiver) Option { return func(s *Store) { s.archiver = a } }

// WithClock overrides the timestamp source (tests).
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func NewStore(repo repository.Repository, opts ...Option) *Store {
	s := &Store{
		repo:  repo,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) stamp(d resume.Document) resume.Document {
	d.VersionID = s.newID()
	// BSON datetimes keep milliseconds only
	d.CreatedAt = s.now().UTC().Truncate(time.Millisecond)
	return d
}

// CreateProfile installs a fresh profile for the bound identity.
func (s *Store) CreateProfile(ctx context.Context, username string) (*resume.Profile, error) {
	userID, err := resume.UserFrom(ctx)
	if err != nil {
		return nil, err
	}
	slug := resume.NormalizeUsername(username)
	if slug == "" {
		return nil, resume.ErrInvalidUsername
	}
	p := resume.NewProfile(s.stamp(resume.NewDocument(userID, slug)))
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.Infow("resume profile created", "user", userID, "username", slug)
	return p, nil
}

func (s *Store) profile(ctx context.Context) (*resume.Profile, error) {
	userID, err := resume.UserFrom(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, resume.ErrProfileNotFound) {
		logger.Errorw("no resume profile for authenticated user", "user", userID)
	}
	return p, err
}

// GetActive returns the active document.
func (s *Store) GetActive(ctx context.Context) (*resume.Document, error) {
	p, err := s.profile(ctx)
	if err != nil {
		return nil, err
	}
	return &p.Active, nil
}

// ListHistory returns the superseded documents, newest first.
func (s *Store) ListHistory(ctx context.Context) ([]resume.Document, error) {
	p, err := s.profile(ctx)
	if err != nil {
		return nil, err
	}
	return p.History, nil
}

// Save installs doc as the new active document with a fresh version
// identifier and timestamp. The previous active document becomes the newest
// history entry; when history exceeds resume.MaxHistory the oldest entries
// are discarded permanently. This is the only path that loses data.
//
// The document is sanitized and its owner and username are pinned to the
// profile's.
func (s *Store) Save(ctx context.Context, doc resume.Document) (*resume.Document, error) {
	next := resume.Sanitize(doc)
	var evicted []resume.Document
	p, err := s.mutate(ctx, "save", func(p *resume.Profile) error {
		d := next.Clone()
		d.UserID = p.UserID
		d.Username = p.Username
		evicted = p.Supersede(s.stamp(d))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.evicted(ctx, p.UserID, "truncate", evicted)
	return &p.Active, nil
}

// Restore makes a history entry active again. The restored document keeps
// its original version identifier and timestamp.
func (s *Store) Restore(ctx context.Context, versionID string) (*resume.Document, error) {
	var evicted []resume.Document
	p, err := s.mutate(ctx, "restore", func(p *resume.Profile) error {
		var err error
		evicted, err = p.Restore(versionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.evicted(ctx, p.UserID, "truncate", evicted)
	return &p.Active, nil
}

// DeleteHistoryEntry removes a history entry. Deleting an entry that is not
// there is not an error.
func (s *Store) DeleteHistoryEntry(ctx context.Context, versionID string) error {
	var removed []resume.Document
	p, err := s.mutate(ctx, "delete", func(p *resume.Profile) error {
		removed = nil
		if d, ok := p.DeleteHistory(versionID); ok {
			removed = []resume.Document{d}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.evicted(ctx, p.UserID, "delete", removed)
	return nil
}

// MoveSection reorders the active document's sections and saves the result
// as a new version. An out-of-range move changes nothing and returns the
// current active document.
func (s *Store) MoveSection(ctx context.Context, index int, dir resume.Direction) (*resume.Document, error) {
	var evicted []resume.Document
	p, err := s.mutate(ctx, "move", func(p *resume.Profile) error {
		order := resume.SanitizeOrder(p.Active.SectionOrder)
		moved := resume.MoveSection(order, index, dir)
		if equalOrder(order, moved) {
			return errNoMove
		}
		next := resume.Sanitize(p.Active.Clone())
		next.SectionOrder = moved
		evicted = p.Supersede(s.stamp(next))
		return nil
	})
	if errors.Is(err, errNoMove) {
		return s.GetActive(ctx)
	}
	if err != nil {
		return nil, err
	}
	s.evicted(ctx, p.UserID, "truncate", evicted)
	return &p.Active, nil
}

// Published returns the active document of the profile with the given
// username when it is published. No identity is required.
func (s *Store) Published(ctx context.Context, username string) (*resume.Document, error) {
	p, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !p.Active.IsPublished {
		return nil, resume.ErrProfileNotFound
	}
	return &p.Active, nil
}

func (s *Store) mutate(ctx context.Context, op string, fn repository.MutateFunc) (*resume.Profile, error) {
	userID, err := resume.UserFrom(ctx)
	if err != nil {
		metrics.VersionOperations.WithLabelValues(op, "unauthenticated").Inc()
		return nil, err
	}
	p, err := s.repo.Update(ctx, userID, fn)
	if err != nil {
		metrics.VersionOperations.WithLabelValues(op, resultLabel(err)).Inc()
		if errors.Is(err, resume.ErrProfileNotFound) {
			logger.Errorw("no resume profile for authenticated user", "user", userID, "op", op)
		}
		return nil, err
	}
	metrics.VersionOperations.WithLabelValues(op, "ok").Inc()
	logger.Debugf("resume %s: user=%s active=%s history=%d", op, userID, p.Active.VersionID, len(p.History))
	return p, nil
}

func (s *Store) evicted(ctx context.Context, userID, reason string, docs []resume.Document) {
	if len(docs) == 0 {
		return
	}
	metrics.HistoryEvictions.WithLabelValues(reason).Add(float64(len(docs)))
	if s.archiver == nil {
		return
	}
	if err := s.archiver.Archive(ctx, userID, docs); err != nil {
		logger.Errorw("archive evicted versions failed", "user", userID, "count", len(docs), "error", err)
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, resume.ErrVersionNotFound):
		return "version_not_found"
	case errors.Is(err, resume.ErrProfileNotFound):
		return "profile_not_found"
	case errors.Is(err, errNoMove):
		return "noop"
	case errors.Is(err, repository.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

func equalOrder(a, b []resume.SectionKey) bool {
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
