package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserFilter narrows user listings
type UserFilter struct {
	Roles  []Role
	Status UserStatus
	Search string
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindAll(ctx context.Context, filter UserFilter) ([]*User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}
