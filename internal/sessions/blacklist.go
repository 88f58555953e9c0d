// Package sessions keeps the Redis blacklist of bearer tokens revoked by
// logout.
package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist stores revoked tokens until they would have expired anyway. A
// nil client disables it: Revoke is a no-op and nothing is revoked.
type Blacklist struct {
	client redis.Cmdable
	prefix string
}

func NewBlacklist(client redis.Cmdable, prefix string) *Blacklist {
	if prefix == "" {
		prefix = "blacklist:access:"
	}
	return &Blacklist{client: client, prefix: prefix}
}

// tokens are stored hashed
func (b *Blacklist) key(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return b.prefix + hex.EncodeToString(sum[:])
}

// Revoke blacklists raw for ttl.
func (b *Blacklist) Revoke(ctx context.Context, raw string, ttl time.Duration) error {
	if b == nil || b.client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return b.client.Set(ctx, b.key(raw), "1", ttl).Err()
}

// IsRevoked reports whether raw is blacklisted.
func (b *Blacklist) IsRevoked(ctx context.Context, raw string) (bool, error) {
	if b == nil || b.client == nil {
		return false, nil
	}
	n, err := b.client.Exists(ctx, b.key(raw)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
