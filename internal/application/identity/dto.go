package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
	User        UserInfo  `json:"user"`
}

// LogoutInput identifies the token being logged out
type LogoutInput struct {
	TokenID   string
	ExpiresAt time.Time
}

// UserInfo contains basic user information
type UserInfo struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	ReferenceID string     `json:"reference_id"`
	ManagerRef  string     `json:"manager_ref,omitempty"`
	TSMRef      string     `json:"tsm_ref,omitempty"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ToUserInfo converts a domain user
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		ReferenceID: u.ReferenceID,
		ManagerRef:  u.ManagerRef,
		TSMRef:      u.TSMRef,
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
	}
}

// CreateUserInput contains the input for creating a user
type CreateUserInput struct {
	Username    string
	Password    string
	DisplayName string
	Role        string
	ReferenceID string
	ManagerRef  string
	TSMRef      string
}

// AgentFilter narrows the transfer target listing
type AgentFilter struct {
	// Role selects "agent" (associates and staff), "manager" or "tsm".
	Role   string
	Search string
}
