package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/resumefire/backend/go-services/internal/resume"
)

// RedisRepo stores profiles as JSON under "<prefix>profile:<userID>" with a
// "<prefix>username:<username>" index. Writes run inside WATCH/MULTI so a
// concurrent writer on the same key aborts the transaction and it is retried.
type RedisRepo struct {
	client *redis.Client
	prefix string
}

// NewRedisRepo creates a Redis-based profile repository. Prefix may be empty.
func NewRedisRepo(client *redis.Client, prefix string) *RedisRepo {
	if prefix == "" {
		prefix = "resume:"
	}
	return &RedisRepo{client: client, prefix: prefix}
}

func (r *RedisRepo) profileKey(userID string) string { return r.prefix + "profile:" + userID }

func (r *RedisRepo) usernameKey(username string) string { return r.prefix + "username:" + username }

func (r *RedisRepo) Create(ctx context.Context, p *resume.Profile) error {
	pk, uk := r.profileKey(p.UserID), r.usernameKey(p.Username)
	cp := p.Clone()
	cp.Revision = 1
	b, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	err = r.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, pk).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return resume.ErrProfileExists
		}
		if n, err = tx.Exists(ctx, uk).Result(); err != nil {
			return err
		}
		if n > 0 {
			return resume.ErrUsernameTaken
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, pk, b, 0)
			pipe.Set(ctx, uk, p.UserID, 0)
			return nil
		})
		return err
	}, pk, uk)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

func (r *RedisRepo) Get(ctx context.Context, userID string) (*resume.Profile, error) {
	return r.get(ctx, r.client, userID)
}

type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisRepo) get(ctx context.Context, c stringGetter, userID string) (*resume.Profile, error) {
	b, err := c.Get(ctx, r.profileKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, resume.ErrProfileNotFound
		}
		return nil, err
	}
	var p resume.Profile
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", userID, err)
	}
	return &p, nil
}

func (r *RedisRepo) GetByUsername(ctx context.Context, username string) (*resume.Profile, error) {
	userID, err := r.client.Get(ctx, r.usernameKey(resume.NormalizeUsername(username))).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, resume.ErrProfileNotFound
		}
		return nil, err
	}
	return r.Get(ctx, userID)
}

func (r *RedisRepo) Update(ctx context.Context, userID string, fn MutateFunc) (*resume.Profile, error) {
	key := r.profileKey(userID)
	var out *resume.Profile
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := r.client.Watch(ctx, func(tx *redis.Tx) error {
			p, err := r.get(ctx, tx, userID)
			if err != nil {
				return err
			}
			if err := fn(p); err != nil {
				return err
			}
			p.Revision++
			b, err := json.Marshal(p)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, b, 0)
				return nil
			})
			if err == nil {
				out = p
			}
			return err
		}, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, ErrConflict
}
