package cache

import (
	"context"
	"slices"
	"sync"

	"github.com/salesdesk/backend/internal/domain/preference"
	"github.com/salesdesk/backend/internal/domain/record"
)

// InMemoryPreferenceStore keeps preferences in process memory. Entries are
// lost on restart and not shared between instances.
type InMemoryPreferenceStore struct {
	mu    sync.RWMutex
	prefs map[string]preference.Preferences
}

// NewInMemoryPreferenceStore creates an empty store
func NewInMemoryPreferenceStore() *InMemoryPreferenceStore {
	return &InMemoryPreferenceStore{prefs: make(map[string]preference.Preferences)}
}

// Get returns the saved preferences or the defaults
func (s *InMemoryPreferenceStore) Get(_ context.Context, userID string, kind record.Kind) (preference.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prefs[userID+":"+string(kind)]
	if !ok {
		return preference.Default(kind), nil
	}
	p.Pinned = slices.Clone(p.Pinned)
	return p, nil
}

// Set saves prefs for userID
func (s *InMemoryPreferenceStore) Set(_ context.Context, userID string, prefs preference.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs.Pinned = slices.Clone(prefs.Pinned)
	s.prefs[userID+":"+string(prefs.Kind)] = prefs
	return nil
}

// Ensure InMemoryPreferenceStore implements preference.Store
var _ preference.Store = (*InMemoryPreferenceStore)(nil)
