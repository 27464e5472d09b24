package handler

import (
	"github.com/gin-gonic/gin"
	appidentity "github.com/salesdesk/backend/internal/application/identity"
)

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=100"`
	Password    string `json:"password" binding:"required,min=8,max=128"`
	DisplayName string `json:"display_name" binding:"max=200"`
	Role        string `json:"role" binding:"required"`
	ReferenceID string `json:"reference_id" binding:"required,max=50"`
	ManagerRef  string `json:"manager_ref" binding:"max=50"`
	TSMRef      string `json:"tsm_ref" binding:"max=50"`
}

// ListAgentsRequest filters the transfer target listing
type ListAgentsRequest struct {
	Role   string `form:"role" binding:"omitempty,oneof=agent manager tsm"`
	Search string `form:"search" binding:"max=100"`
}

// UserHandler handles user accounts and the agent picker
type UserHandler struct {
	BaseHandler
	users *appidentity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *appidentity.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// ListAgents godoc
// @Summary      List transfer targets
// @Description  Active users a selection can be transferred to
// @Tags         users
// @Produce      json
// @Param        role   query string false "agent (default), manager or tsm"
// @Param        search query string false "Matches username, display name or reference id"
// @Success      200 {object} dto.Response{data=[]appidentity.UserInfo}
// @Security     BearerAuth
// @Router       /users/agents [get]
func (h *UserHandler) ListAgents(c *gin.Context) {
	if _, ok := h.session(c); !ok {
		return
	}
	var req ListAgentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	agents, err := h.users.ListAgents(c.Request.Context(), appidentity.AgentFilter{
		Role:   req.Role,
		Search: req.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, agents)
}

// Create godoc
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "User"
// @Success      201 {object} dto.Response{data=appidentity.UserInfo}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	user, err := h.users.Create(c.Request.Context(), &session, appidentity.CreateUserInput{
		Username:    req.Username,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		ReferenceID: req.ReferenceID,
		ManagerRef:  req.ManagerRef,
		TSMRef:      req.TSMRef,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}
