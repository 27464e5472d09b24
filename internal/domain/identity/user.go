package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/salesdesk/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
)

// Password cost for bcrypt
const bcryptCost = 12

var (
	usernamePattern    = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,100}$`)
	referenceIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{2}[A-Za-z0-9-]{0,48}$`)
)

// User is an agent of the sales desk. ReferenceID is the short code that
// records carry in their owner field (referenceid); ManagerRef and TSMRef
// point at the reference ids of the user's manager and territory manager.
type User struct {
	shared.BaseEntity
	Username     string
	PasswordHash string
	DisplayName  string
	Role         Role
	ReferenceID  string
	ManagerRef   string
	TSMRef       string
	Status       UserStatus
	LastLoginAt  *time.Time
}

// NewUser creates an active user with a hashed password.
func NewUser(username, password, referenceID string, role Role) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !usernamePattern.MatchString(username) {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username must be 3-100 characters of letters, digits, '_', '.' or '-'")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	referenceID = strings.TrimSpace(referenceID)
	if !referenceIDPattern.MatchString(referenceID) {
		return nil, shared.NewDomainError("INVALID_REFERENCE_ID", "Reference id must start with two letters or digits")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role: "+string(role))
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(time.Now()),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		ReferenceID:  referenceID,
		Status:       UserStatusActive,
	}, nil
}

// SetHierarchy sets the manager and territory-manager references.
func (u *User) SetHierarchy(managerRef, tsmRef string) {
	u.ManagerRef = strings.TrimSpace(managerRef)
	u.TSMRef = strings.TrimSpace(tsmRef)
	u.Touch(time.Now())
}

// SetDisplayName sets the user's display name
func (u *User) SetDisplayName(displayName string) error {
	if len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}
	u.DisplayName = strings.TrimSpace(displayName)
	u.Touch(time.Now())
	return nil
}

// VerifyPassword checks password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLogin stamps a successful login.
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.Touch(at)
}

// Deactivate blocks further logins.
func (u *User) Deactivate() {
	u.Status = UserStatusDeactivated
	u.Touch(time.Now())
}

// IsActive returns true if the user can log in
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Session returns the request identity for u.
func (u *User) Session() Session {
	return Session{
		UserID:      u.ID,
		Username:    u.Username,
		ReferenceID: u.ReferenceID,
		Role:        u.Role,
		ManagerRef:  u.ManagerRef,
		TSMRef:      u.TSMRef,
	}
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 bytes")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
