// Package preference models per-user list screen preferences: the chosen
// layout and the pinned record ids.
package preference

import (
	"context"
	"slices"

	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/domain/shared"
)

// ViewMode is the list layout.
type ViewMode string

const (
	ViewTable ViewMode = "table"
	ViewGrid  ViewMode = "grid"
	ViewCard  ViewMode = "card"
)

// MaxPinned bounds the pinned ids kept per screen.
const MaxPinned = 50

// IsValid checks if the view mode is valid
func (m ViewMode) IsValid() bool {
	return m == ViewTable || m == ViewGrid || m == ViewCard
}

// Preferences of one user on one list screen.
type Preferences struct {
	Kind     record.Kind `json:"kind"`
	ViewMode ViewMode    `json:"view_mode"`
	Pinned   []string    `json:"pinned"`
}

// Default returns the preferences of a user who never changed anything.
func Default(kind record.Kind) Preferences {
	return Preferences{Kind: kind, ViewMode: ViewTable, Pinned: []string{}}
}

// Normalize validates p and removes duplicate pins, keeping first
// occurrence order.
func (p *Preferences) Normalize() error {
	if p.ViewMode == "" {
		p.ViewMode = ViewTable
	}
	if !p.ViewMode.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "View mode must be table, grid or card")
	}
	seen := make(map[string]struct{}, len(p.Pinned))
	pinned := make([]string, 0, len(p.Pinned))
	for _, id := range p.Pinned {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		pinned = append(pinned, id)
	}
	if len(pinned) > MaxPinned {
		return shared.NewDomainError("INVALID_INPUT", "Too many pinned items")
	}
	p.Pinned = pinned
	return nil
}

// TogglePin pins id or unpins it if already pinned.
func (p *Preferences) TogglePin(id string) bool {
	if i := slices.Index(p.Pinned, id); i >= 0 {
		p.Pinned = slices.Delete(p.Pinned, i, i+1)
		return false
	}
	p.Pinned = append(p.Pinned, id)
	return true
}

// Store persists preferences per user and screen. Get returns Default when
// nothing was saved.
type Store interface {
	Get(ctx context.Context, userID string, kind record.Kind) (Preferences, error)
	Set(ctx context.Context, userID string, prefs Preferences) error
}
