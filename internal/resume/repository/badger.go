package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/resumefire/backend/go-services/internal/resume"
)

// OpenBadger opens an embedded BadgerDB at path, or an in-memory instance
// when path is empty.
func OpenBadger(path string) (*badger.DB, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger dir: %w", err)
		}
		opts = badger.DefaultOptions(path).WithSyncWrites(true)
	}
	opts = opts.WithLogger(nil).WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

// BadgerRepo stores profiles in an embedded BadgerDB. Badger transactions
// are serializable; a conflicting commit is retried.
type BadgerRepo struct {
	db *badger.DB
}

func NewBadgerRepo(db *badger.DB) *BadgerRepo {
	return &BadgerRepo{db: db}
}

func profileKey(userID string) []byte { return []byte("profile/" + userID) }
func usernameKey(username string) []byte { return []byte("username/" + username) }

func readProfile(txn *badger.Txn, userID string) (*resume.Profile, error) {
	item, err := txn.Get(profileKey(userID))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, resume.ErrProfileNotFound
		}
		return nil, err
	}
	b, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var p resume.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", userID, err)
	}
	return &p, nil
}

func writeProfile(txn *badger.Txn, p *resume.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return txn.Set(profileKey(p.UserID), b)
}

func (r *BadgerRepo) Create(ctx context.Context, p *resume.Profile) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(profileKey(p.UserID)); err == nil {
			return resume.ErrProfileExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if _, err := txn.Get(usernameKey(p.Username)); err == nil {
			return resume.ErrUsernameTaken
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		cp := p.Clone()
		cp.Revision = 1
		if err := writeProfile(txn, cp); err != nil {
			return err
		}
		return txn.Set(usernameKey(p.Username), []byte(p.UserID))
	})
	if errors.Is(err, badger.ErrConflict) {
		return ErrConflict
	}
	return err
}

func (r *BadgerRepo) Get(ctx context.Context, userID string) (*resume.Profile, error) {
	var p *resume.Profile
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		p, err = readProfile(txn, userID)
		return err
	})
	return p, err
}

func (r *BadgerRepo) GetByUsername(ctx context.Context, username string) (*resume.Profile, error) {
	var p *resume.Profile
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey(resume.NormalizeUsername(username)))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return resume.ErrProfileNotFound
			}
			return err
		}
		userID, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		p, err = readProfile(txn, string(userID))
		return err
	})
	return p, err
}

func (r *BadgerRepo) Update(ctx context.Context, userID string, fn MutateFunc) (*resume.Profile, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var out *resume.Profile
		err := r.db.Update(func(txn *badger.Txn) error {
			p, err := readProfile(txn, userID)
			if err != nil {
				return err
			}
			if err := fn(p); err != nil {
				return err
			}
			p.Revision++
			if err := writeProfile(txn, p); err != nil {
				return err
			}
			out = p
			return nil
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, ErrConflict
}
