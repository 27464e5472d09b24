// Package preference serves the per-user list screen preferences.
package preference

import (
	"context"

	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/preference"
	"github.com/salesdesk/backend/internal/domain/record"
)

// Service reads and writes preferences
type Service struct {
	store preference.Store
}

// NewService creates a new preference service
func NewService(store preference.Store) *Service {
	return &Service{store: store}
}

// Get returns the caller's preferences for kind
func (s *Service) Get(ctx context.Context, session identity.Session, kind record.Kind) (preference.Preferences, error) {
	if !kind.IsValid() {
		return preference.Preferences{}, record.ErrUnknownKind
	}
	return s.store.Get(ctx, session.UserID.String(), kind)
}

// Set replaces the caller's preferences for kind
func (s *Service) Set(ctx context.Context, session identity.Session, kind record.Kind, prefs preference.Preferences) (preference.Preferences, error) {
	if !kind.IsValid() {
		return preference.Preferences{}, record.ErrUnknownKind
	}
	prefs.Kind = kind
	if err := prefs.Normalize(); err != nil {
		return preference.Preferences{}, err
	}
	if err := s.store.Set(ctx, session.UserID.String(), prefs); err != nil {
		return preference.Preferences{}, err
	}
	return prefs, nil
}

// TogglePin pins or unpins one record and reports whether it is now pinned.
func (s *Service) TogglePin(ctx context.Context, session identity.Session, kind record.Kind, id string) (preference.Preferences, bool, error) {
	prefs, err := s.Get(ctx, session, kind)
	if err != nil {
		return preference.Preferences{}, false, err
	}
	pinned := prefs.TogglePin(id)
	prefs, err = s.Set(ctx, session, kind, prefs)
	if err != nil {
		return preference.Preferences{}, false, err
	}
	return prefs, pinned, nil
}
