package repository

import (
	"context"
	"sync"

	"github.com/resumefire/backend/go-services/internal/resume"
)

type memoryEntry struct {
	mu      sync.Mutex
	profile *resume.Profile
}

// MemoryRepo keeps profiles in process memory. Each identity has its own
// lock so updates for different users never contend.
type MemoryRepo struct {
	mu         sync.RWMutex
	store      map[string]*memoryEntry
	byUsername map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		store:      make(map[string]*memoryEntry),
		byUsername: make(map[string]string),
	}
}

func (m *MemoryRepo) Create(ctx context.Context, p *resume.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[p.UserID]; ok {
		return resume.ErrProfileExists
	}
	if _, ok := m.byUsername[p.Username]; ok {
		return resume.ErrUsernameTaken
	}
	cp := p.Clone()
	cp.Revision = 1
	m.store[p.UserID] = &memoryEntry{profile: cp}
	m.byUsername[p.Username] = p.UserID
	return nil
}

func (m *MemoryRepo) entry(userID string) (*memoryEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.store[userID]
	return e, ok
}

func (m *MemoryRepo) Get(ctx context.Context, userID string) (*resume.Profile, error) {
	e, ok := m.entry(userID)
	if !ok {
		return nil, resume.ErrProfileNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile.Clone(), nil
}

func (m *MemoryRepo) GetByUsername(ctx context.Context, username string) (*resume.Profile, error) {
	m.mu.RLock()
	userID, ok := m.byUsername[resume.NormalizeUsername(username)]
	m.mu.RUnlock()
	if !ok {
		return nil, resume.ErrProfileNotFound
	}
	return m.Get(ctx, userID)
}

func (m *MemoryRepo) Update(ctx context.Context, userID string, fn MutateFunc) (*resume.Profile, error) {
	e, ok := m.entry(userID)
	if !ok {
		return nil, resume.ErrProfileNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	work := e.profile.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	work.Revision = e.profile.Revision + 1
	e.profile = work
	return work.Clone(), nil
}
