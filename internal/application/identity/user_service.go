package identity

import (
	"context"
	"strings"

	"github.com/salesdesk/backend/internal/domain/identity"
	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/salesdesk/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// UserService manages the user directory
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// Create adds a user. Only administrators may create users; a nil session
// is the bootstrap path used by the server on first start.
func (s *UserService) Create(ctx context.Context, session *identity.Session, input CreateUserInput) (*UserInfo, error) {
	if session != nil && !session.Role.IsAdministrative() {
		return nil, shared.ErrForbidden
	}
	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}

	user, err := identity.NewUser(input.Username, input.Password, input.ReferenceID, identity.ParseRole(input.Role))
	if err != nil {
		return nil, err
	}
	user.SetHierarchy(input.ManagerRef, input.TSMRef)
	if err := user.SetDisplayName(input.DisplayName); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.FromContextOr(ctx, s.logger).Info("User created",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))
	info := ToUserInfo(user)
	return &info, nil
}

// ListAgents returns the active users a selection can be transferred to.
func (s *UserService) ListAgents(ctx context.Context, filter AgentFilter) ([]UserInfo, error) {
	var roles []identity.Role
	switch strings.ToLower(strings.TrimSpace(filter.Role)) {
	case "", "agent":
		roles = []identity.Role{identity.RoleTerritorySalesAssociate, identity.RoleStaff}
	case "manager":
		roles = []identity.Role{identity.RoleManager}
	case "tsm":
		roles = []identity.Role{identity.RoleTerritorySalesManager}
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "Role must be agent, manager or tsm")
	}

	users, err := s.userRepo.FindAll(ctx, identity.UserFilter{
		Roles:  roles,
		Status: identity.UserStatusActive,
		Search: strings.TrimSpace(filter.Search),
	})
	if err != nil {
		return nil, err
	}
	out := make([]UserInfo, len(users))
	for i, u := range users {
		out[i] = ToUserInfo(u)
	}
	return out, nil
}
