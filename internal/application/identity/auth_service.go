// Package identity implements login, logout and the user directory.
package identity

import (
	"context"
	"errors"
	"time"

	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/auth"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ErrInvalidCredentials is returned for any failed login, whatever the
// reason, so usernames cannot be probed.
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// AuthService handles authentication operations
type AuthService struct {
	userRepo    identity.UserRepository
	jwtService  *auth.JWTService
	revocations auth.RevocationList
	now         func() time.Time
	logger      *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	revocations auth.RevocationList,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		jwtService:  jwtService,
		revocations: revocations,
		now:         time.Now,
		logger:      logger,
	}
}

// Login authenticates a user and returns an access token carrying the
// user's session.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	log := logger.FromContextOr(ctx, s.logger)

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Warn("Login for unknown user", zap.String("username", input.Username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive() {
		log.Warn("Login for deactivated user", zap.String("username", input.Username))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}
	if !user.VerifyPassword(input.Password) {
		log.Warn("Invalid password attempt", zap.String("username", input.Username))
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateAccessToken(user.Session())
	if err != nil {
		log.Error("Failed to generate access token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Update(ctx, user); err != nil {
		// The token is already issued; a stale last-login is acceptable.
		log.Error("Failed to record login", zap.Error(err))
	}

	log.Info("User logged in", zap.String("username", user.Username), zap.String("user_id", user.ID.String()))
	return &LoginResult{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		User:        ToUserInfo(user),
	}, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenID == "" {
		return shared.NewDomainError("INVALID_INPUT", "Token has no id")
	}
	ttl := input.ExpiresAt.Sub(s.now())
	if err := s.revocations.Revoke(ctx, input.TokenID, ttl); err != nil {
		return err
	}
	logger.FromContextOr(ctx, s.logger).Info("User logged out")
	return nil
}

// CurrentUser returns the user behind session
func (s *AuthService) CurrentUser(ctx context.Context, session identity.Session) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}
