// Package revocation blacklists access token jti values in redis until the
// token would have expired on its own.
package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "revoked_jti:"

// Store is a redis-backed access token blacklist.
type Store struct {
	client *redis.Client
}

// NewStore creates a revocation store from a redis URL.
func NewStore(redisURL string) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return &Store{client: redis.NewClient(opt)}, nil
}

// NewStoreWithClient wraps an existing redis client, used in tests.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Revoke blacklists a jti for the given TTL. A non-positive TTL means the
// access token already expired and nothing needs to be stored.
func (s *Store) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether a jti is blacklisted.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	n, err := s.client.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// Close releases the redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
