package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/tokengate/redis"
)

// DefaultKeyPrefix namespaces revocation keys.
const DefaultKeyPrefix = "tokengate:revoked"

type entry struct {
	Until int64 `json:"until"`
}

// RedisStore keeps one key per revoked id with a TTL ending when the token
// expires, so Redis drops entries on its own.
type RedisStore struct {
	store *redis.TypedStore[entry]
	now   func() time.Time
}

// NewRedisStore creates a store on client. An empty prefix uses DefaultKeyPrefix.
func NewRedisStore(client *redis.Client, prefix string, now func() time.Time) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if now == nil {
		now = time.Now
	}
	return &RedisStore{store: redis.NewTypedStore[entry](client, prefix), now: now}
}

func (s *RedisStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	if jti == "" {
		return ErrEmptyID
	}
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.store.Save(ctx, jti, &entry{Until: until.Unix()}, ttl); err != nil {
		return fmt.Errorf("revoke %s: %w", jti, err)
	}
	return nil
}

func (s *RedisStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	return s.store.Has(ctx, jti)
}
