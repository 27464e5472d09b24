package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/salesdesk/backend/internal/domain/preference"
	"github.com/salesdesk/backend/internal/domain/record"
)

// RedisPreferenceStore implements preference.Store using Redis. Entries do
// not expire.
type RedisPreferenceStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisPreferenceStore creates a store on an existing client
func NewRedisPreferenceStore(client *redis.Client, keyPrefix string) *RedisPreferenceStore {
	return &RedisPreferenceStore{client: client, keyPrefix: keyPrefix + "prefs:"}
}

func (s *RedisPreferenceStore) key(userID string, kind record.Kind) string {
	return s.keyPrefix + userID + ":" + string(kind)
}

// Get returns the saved preferences or the defaults
func (s *RedisPreferenceStore) Get(ctx context.Context, userID string, kind record.Kind) (preference.Preferences, error) {
	raw, err := s.client.Get(ctx, s.key(userID, kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return preference.Default(kind), nil
	}
	if err != nil {
		return preference.Preferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	var prefs preference.Preferences
	if err := json.Unmarshal(raw, &prefs); err != nil {
		return preference.Default(kind), nil
	}
	prefs.Kind = kind
	if prefs.Pinned == nil {
		prefs.Pinned = []string{}
	}
	return prefs, nil
}

// Set saves prefs for userID
func (s *RedisPreferenceStore) Set(ctx context.Context, userID string, prefs preference.Preferences) error {
	raw, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(userID, prefs.Kind), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// Ensure RedisPreferenceStore implements preference.Store
var _ preference.Store = (*RedisPreferenceStore)(nil)
