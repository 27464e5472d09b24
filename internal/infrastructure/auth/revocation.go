package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList remembers logged-out token ids until they expire.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisRevocationList implements RevocationList using Redis
type RedisRevocationList struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisRevocationList creates a revocation list on an existing client.
func NewRedisRevocationList(client *redis.Client, keyPrefix string) *RedisRevocationList {
	return &RedisRevocationList{client: client, keyPrefix: keyPrefix + "token:revoked:"}
}

// Revoke stores jti for ttl
func (l *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, l.keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked checks if jti was revoked
func (l *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, l.keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

var _ RevocationList = (*RedisRevocationList)(nil)

// InMemoryRevocationList is the single-instance RevocationList used when
// Redis is disabled.
type InMemoryRevocationList struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewInMemoryRevocationList creates an empty list
func NewInMemoryRevocationList() *InMemoryRevocationList {
	return &InMemoryRevocationList{entries: make(map[string]time.Time), now: time.Now}
}

// Revoke stores jti for ttl
func (l *InMemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[jti] = l.now().Add(ttl)
	return nil
}

// IsRevoked checks if jti was revoked and has not expired yet
func (l *InMemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	until, ok := l.entries[jti]
	if !ok {
		return false, nil
	}
	if l.now().After(until) {
		delete(l.entries, jti)
		return false, nil
	}
	return true, nil
}

// Prune drops expired entries and reports how many were removed
func (l *InMemoryRevocationList) Prune(_ context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	removed := 0
	for jti, until := range l.entries {
		if now.After(until) {
			delete(l.entries, jti)
			removed++
		}
	}
	return removed, nil
}

var _ RevocationList = (*InMemoryRevocationList)(nil)
