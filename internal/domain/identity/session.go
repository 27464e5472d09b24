package identity

import (
	"context"

	"github.com/google/uuid"
)

// Session is the identity of the caller of one request. It is built once
// from the access token and passed explicitly to everything that scopes
// records by owner.
type Session struct {
	UserID      uuid.UUID
	Username    string
	ReferenceID string
	Role        Role
	ManagerRef  string
	TSMRef      string
}

// IsZero reports whether no identity has been established.
func (s Session) IsZero() bool {
	return s.UserID == uuid.Nil && s.ReferenceID == ""
}

type sessionKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored in ctx, if any.
func SessionFromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
