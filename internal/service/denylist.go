package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const denylistKeyPrefix = "denylist:"

// TokenDenylist rejects access tokens that were voided by logout before their
// embedded expiry elapses. Entries expire together with the token, so the set
// stays bounded.
type TokenDenylist struct {
	rdb *redis.Client
}

func NewTokenDenylist(rdb *redis.Client) *TokenDenylist {
	return &TokenDenylist{rdb: rdb}
}

// Add voids the token until its remaining lifetime runs out. A non-positive
// ttl means the token is already expired and nothing needs to be stored.
// Without a redis backend the denylist is a no-op.
func (d *TokenDenylist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if d.rdb == nil || ttl <= 0 {
		return nil
	}
	return d.rdb.Set(ctx, denylistKeyPrefix+token, 1, ttl).Err()
}

// Contains reports whether the token has been voided.
func (d *TokenDenylist) Contains(ctx context.Context, token string) (bool, error) {
	if d.rdb == nil {
		return false, nil
	}
	n, err := d.rdb.Exists(ctx, denylistKeyPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
