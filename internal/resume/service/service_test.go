package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/resumefire/backend/go-services/internal/resume"
	"github.com/resumefire/backend/go-services/internal/resume/repository"
	"github.com/resumefire/backend/go-services/pkg/metrics"
	"github.com/stretchr/testify/require"
)

type fakeArchiver struct {
	mu   sync.Mutex
	docs []resume.Document
	err  error
}

func (f *fakeArchiver) Archive(ctx context.Context, userID string, docs []resume.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, docs...)
	return f.err
}

type tick struct{ t time.Time }

func (c *tick) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newStore(t *testing.T, opts ...Option) (*Store, context.Context) {
	t.Helper()
	clock := &tick{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.now)}, opts...)
	s := NewStore(repository.NewMemoryRepo(), opts...)
	ctx := resume.WithUser(context.Background(), "user-1")
	_, err := s.CreateProfile(ctx, "Ada")
	require.NoError(t, err)
	return s, ctx
}

func withSummary(s string) resume.Document {
	d := resume.NewDocument("user-1", "ada")
	d.Summary = s
	return d
}

func summaries(docs []resume.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Summary)
	}
	return out
}

func TestStore_RequiresIdentity(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()

	_, err := s.GetActive(ctx)
	require.ErrorIs(t, err, resume.ErrNotAuthenticated)
	_, err = s.Save(ctx, withSummary("x"))
	require.ErrorIs(t, err, resume.ErrNotAuthenticated)
	_, err = s.Restore(ctx, "v")
	require.ErrorIs(t, err, resume.ErrNotAuthenticated)
	require.ErrorIs(t, s.DeleteHistoryEntry(ctx, "v"), resume.ErrNotAuthenticated)
	_, err = s.CreateProfile(ctx, "bob")
	require.ErrorIs(t, err, resume.ErrNotAuthenticated)
}

func TestStore_ProfileNotFound(t *testing.T) {
	s, _ := newStore(t)
	ctx := resume.WithUser(context.Background(), "stranger")

	_, err := s.GetActive(ctx)
	require.ErrorIs(t, err, resume.ErrProfileNotFound)
	_, err = s.Save(ctx, withSummary("x"))
	require.ErrorIs(t, err, resume.ErrProfileNotFound)
}

func TestStore_CreateProfile(t *testing.T) {
	s, ctx := newStore(t)

	active, err := s.GetActive(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, active.VersionID)
	require.False(t, active.CreatedAt.IsZero())
	require.Equal(t, "user-1", active.UserID)
	require.Equal(t, "ada", active.Username)
	require.Equal(t, resume.DefaultOrder(), active.SectionOrder)
	require.False(t, active.IsPublished)

	history, err := s.ListHistory(ctx)
	require.NoError(t, err)
	require.Empty(t, history)

	_, err = s.CreateProfile(ctx, "ada2")
	require.ErrorIs(t, err, resume.ErrProfileExists)
	_, err = s.CreateProfile(resume.WithUser(context.Background(), "user-2"), "ADA")
	require.ErrorIs(t, err, resume.ErrUsernameTaken)
	_, err = s.CreateProfile(resume.WithUser(context.Background(), "user-3"), "!!!")
	require.ErrorIs(t, err, resume.ErrInvalidUsername)
}

func TestStore_SaveMintsVersionAndIgnoresCallerValues(t *testing.T) {
	s, ctx := newStore(t)
	before, err := s.GetActive(ctx)
	require.NoError(t, err)

	d := withSummary("A")
	d.VersionID = "caller-chosen"
	d.CreatedAt = time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	d.UserID = "someone-else"
	d.Username = "mallory"

	saved, err := s.Save(ctx, d)
	require.NoError(t, err)
	require.NotEqual(t, "caller-chosen", saved.VersionID)
	require.NotEqual(t, before.VersionID, saved.VersionID)
	require.True(t, saved.CreatedAt.After(before.CreatedAt))
	require.Equal(t, "user-1", saved.UserID)
	require.Equal(t, "ada", saved.Username)

	history, err := s.ListHistory(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, before.VersionID, history[0].VersionID)
}

func TestStore_BoundedHistoryScenario(t *testing.T) {
	archive := &fakeArchiver{}
	s, ctx := newStore(t, WithArchiver(archive))

	save := func(summary string) *resume.Document {
		d, err := s.Save(ctx, withSummary(summary))
		require.NoError(t, err)
		return d
	}

	save("A")
	save("B")
	save("C")
	history, err := s.ListHistory(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"B", "A", ""}, summaries(history))

	save("D")
	history, _ = s.ListHistory(ctx)
	require.Equal(t, []string{"C", "B", "A"}, summaries(history))
	a := history[2]

	evictionsBefore := testutil.ToFloat64(metrics.HistoryEvictions.WithLabelValues("truncate"))
	save("E")
	history, _ = s.ListHistory(ctx)
	require.Equal(t, []string{"D", "C", "B"}, summaries(history))
	require.Len(t, history, resume.MaxHistory)
	require.Equal(t, evictionsBefore+1, testutil.ToFloat64(metrics.HistoryEvictions.WithLabelValues("truncate")))

	// A is gone for good
	_, err = s.Restore(ctx, a.VersionID)
	require.ErrorIs(t, err, resume.ErrVersionNotFound)
	require.Contains(t, summaries(archive.docs), "A")
}

func TestStore_ManySavesKeepNewestK(t *testing.T) {
	s, ctx := newStore(t)
	for i := 0; i < 10; i++ {
		_, err := s.Save(ctx, withSummary(fmt.Sprintf("s%d", i)))
		require.NoError(t, err)
	}
	history, err := s.ListHistory(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"s8", "s7", "s6"}, summaries(history))
	active, _ := s.GetActive(ctx)
	require.Equal(t, "s9", active.Summary)
}

func TestStore_RestoreRoundTrip(t *testing.T) {
	s, ctx := newStore(t)
	first, err := s.Save(ctx, withSummary("A"))
	require.NoError(t, err)
	second, err := s.Save(ctx, withSummary("B"))
	require.NoError(t, err)

	restored, err := s.Restore(ctx, first.VersionID)
	require.NoError(t, err)
	require.Equal(t, first.VersionID, restored.VersionID)
	require.True(t, first.CreatedAt.Equal(restored.CreatedAt))

	active, err := s.GetActive(ctx)
	require.NoError(t, err)
	require.Equal(t, first.VersionID, active.VersionID)
	require.Equal(t, "A", active.Summary)

	history, _ := s.ListHistory(ctx)
	require.Equal(t, second.VersionID, history[0].VersionID)
	for _, h := range history {
		require.NotEqual(t, active.VersionID, h.VersionID)
	}
}

func TestStore_RestoreMissingLeavesStateUntouched(t *testing.T) {
	s, ctx := newStore(t)
	_, err := s.Save(ctx, withSummary("A"))
	require.NoError(t, err)
	activeBefore, _ := s.GetActive(ctx)
	historyBefore, _ := s.ListHistory(ctx)

	_, err = s.Restore(ctx, "does-not-exist")
	require.ErrorIs(t, err, resume.ErrVersionNotFound)

	activeAfter, _ := s.GetActive(ctx)
	historyAfter, _ := s.ListHistory(ctx)
	require.Equal(t, activeBefore, activeAfter)
	require.Equal(t, historyBefore, historyAfter)
}

func TestStore_DeleteHistoryEntryIsIdempotentAndFinal(t *testing.T) {
	archive := &fakeArchiver{err: errors.New("bucket offline")}
	s, ctx := newStore(t, WithArchiver(archive))
	a, err := s.Save(ctx, withSummary("A"))
	require.NoError(t, err)
	_, err = s.Save(ctx, withSummary("B"))
	require.NoError(t, err)

	require.NoError(t, s.DeleteHistoryEntry(ctx, a.VersionID))
	require.NoError(t, s.DeleteHistoryEntry(ctx, a.VersionID))
	require.NoError(t, s.DeleteHistoryEntry(ctx, "never-existed"))

	history, _ := s.ListHistory(ctx)
	for _, h := range history {
		require.NotEqual(t, a.VersionID, h.VersionID)
	}
	_, err = s.Restore(ctx, a.VersionID)
	require.ErrorIs(t, err, resume.ErrVersionNotFound)
	// archive failures do not fail the delete
	require.Len(t, archive.docs, 1)
}

func TestStore_SaveSanitizes(t *testing.T) {
	s, ctx := newStore(t)
	d := withSummary("x")
	d.Experience = []resume.Experience{{Company: "Acme"}}
	d.SectionOrder = []resume.SectionKey{resume.SectionSkills}

	saved, err := s.Save(ctx, d)
	require.NoError(t, err)
	require.True(t, resume.IsStructurallyValid(*saved))
	require.Equal(t, resume.SectionSkills, saved.SectionOrder[0])
}

func TestStore_MoveSection(t *testing.T) {
	s, ctx := newStore(t)
	before, _ := s.GetActive(ctx)

	same, err := s.MoveSection(ctx, 0, resume.Up)
	require.NoError(t, err)
	require.Equal(t, before.VersionID, same.VersionID)

	moved, err := s.MoveSection(ctx, 0, resume.Down)
	require.NoError(t, err)
	require.NotEqual(t, before.VersionID, moved.VersionID)
	require.Equal(t, resume.SectionExperience, moved.SectionOrder[0])
	require.Equal(t, resume.SectionSummary, moved.SectionOrder[1])
}

// racingRepo runs race once, right before the next read or update reaches
// the wrapped repository.
type racingRepo struct {
	*repository.MemoryRepo
	armed atomic.Bool
	race  func()
}

func (r *racingRepo) fire() {
	if r.armed.CompareAndSwap(true, false) {
		r.race()
	}
}

func (r *racingRepo) Get(ctx context.Context, userID string) (*resume.Profile, error) {
	p, err := r.MemoryRepo.Get(ctx, userID)
	r.fire()
	return p, err
}

func (r *racingRepo) Update(ctx context.Context, userID string, fn repository.MutateFunc) (*resume.Profile, error) {
	r.fire()
	return r.MemoryRepo.Update(ctx, userID, fn)
}

func TestStore_MoveSectionKeepsConcurrentSave(t *testing.T) {
	repo := &racingRepo{MemoryRepo: repository.NewMemoryRepo()}
	s := NewStore(repo)
	ctx := resume.WithUser(context.Background(), "user-1")
	_, err := s.CreateProfile(ctx, "ada")
	require.NoError(t, err)

	repo.race = func() {
		_, err := s.Save(ctx, withSummary("concurrent edit"))
		require.NoError(t, err)
	}
	repo.armed.Store(true)

	moved, err := s.MoveSection(ctx, 0, resume.Down)
	require.NoError(t, err)
	require.False(t, repo.armed.Load())
	require.Equal(t, "concurrent edit", moved.Summary)
	require.Equal(t, resume.SectionExperience, moved.SectionOrder[0])

	history, err := s.ListHistory(ctx)
	require.NoError(t, err)
	require.Equal(t, "concurrent edit", history[0].Summary)
}

func TestStore_TimestampsKeepMilliseconds(t *testing.T) {
	at := time.Date(2025, 3, 1, 9, 0, 0, 123456789, time.UTC)
	s := NewStore(repository.NewMemoryRepo(), WithClock(func() time.Time { return at }))
	ctx := resume.WithUser(context.Background(), "user-1")
	_, err := s.CreateProfile(ctx, "ada")
	require.NoError(t, err)

	saved, err := s.Save(ctx, withSummary("A"))
	require.NoError(t, err)
	require.Equal(t, time.Date(2025, 3, 1, 9, 0, 0, 123000000, time.UTC), saved.CreatedAt)
}

func TestStore_Published(t *testing.T) {
	s, ctx := newStore(t)
	anon := context.Background()

	_, err := s.Published(anon, "ada")
	require.ErrorIs(t, err, resume.ErrProfileNotFound)

	d := withSummary("public")
	d.IsPublished = true
	_, err = s.Save(ctx, d)
	require.NoError(t, err)

	got, err := s.Published(anon, "ADA")
	require.NoError(t, err)
	require.Equal(t, "public", got.Summary)

	_, err = s.Published(anon, "nobody")
	require.ErrorIs(t, err, resume.ErrProfileNotFound)
}

func TestStore_IdentitiesAreIndependent(t *testing.T) {
	s, ctx := newStore(t)
	other := resume.WithUser(context.Background(), "user-2")
	_, err := s.CreateProfile(other, "bob")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Save(ctx, withSummary(fmt.Sprintf("ada-%d", i)))
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Save(other, withSummary(fmt.Sprintf("bob-%d", i)))
		}(i)
	}
	wg.Wait()

	for _, c := range []context.Context{ctx, other} {
		history, err := s.ListHistory(c)
		require.NoError(t, err)
		require.Len(t, history, resume.MaxHistory)
		active, _ := s.GetActive(c)
		for _, h := range history {
			require.Equal(t, active.UserID, h.UserID)
		}
	}
}
