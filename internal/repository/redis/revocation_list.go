package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"coinwatch/pkg/auth"
)

// Compile-time check
var _ auth.RevocationList = (*RevocationList)(nil)

// RevocationList keeps revoked token IDs in Redis until the token's
// natural expiry, after which the key ages out on its own.
type RevocationList struct {
	rdb    *goredis.Client
	prefix string
}

// NewRevocationList creates a Redis-backed revocation list
func NewRevocationList(rdb *goredis.Client, prefix string) *RevocationList {
	return &RevocationList{rdb: rdb, prefix: prefix}
}

func (l *RevocationList) key(tokenID string) string {
	return l.prefix + ":revoked:" + tokenID
}

// Revoke records a token ID for the given TTL
func (l *RevocationList) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return l.rdb.Set(ctx, l.key(tokenID), "1", ttl).Err()
}

// IsRevoked checks whether a token ID has been revoked
func (l *RevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	count, err := l.rdb.Exists(ctx, l.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
