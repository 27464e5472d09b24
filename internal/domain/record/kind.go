package record

import (
	"strings"

	"github.com/salesdesk/backend/internal/domain/shared"
)

// Kind identifies one module of the desk. It doubles as the URL segment.
type Kind string

const (
	KindTickets    Kind = "tickets"
	KindAccounts   Kind = "accounts"
	KindProjects   Kind = "projects"
	KindActivities Kind = "activities"
	KindInventory  Kind = "inventory"
)

// Kinds lists every module in menu order.
var Kinds = []Kind{KindTickets, KindAccounts, KindProjects, KindActivities, KindInventory}

// ErrUnknownKind is returned for a path segment that names no module.
var ErrUnknownKind = shared.NewDomainError("NOT_FOUND", "Unknown module")

// ParseKind resolves a path segment to a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", ErrUnknownKind
}

// IsValid checks if the kind is one of Kinds
func (k Kind) IsValid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}
