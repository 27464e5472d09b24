package handler

import (
	"github.com/gin-gonic/gin"
	prefapp "github.com/salesdesk/backend/internal/application/preference"
	"github.com/salesdesk/backend/internal/domain/preference"
)

// UpdatePreferencesRequest replaces a screen's preferences
type UpdatePreferencesRequest struct {
	ViewMode string   `json:"view_mode" binding:"omitempty,oneof=table grid card"`
	Pinned   []string `json:"pinned" binding:"max=50"`
}

// TogglePinResponse reports the preferences after a pin toggle
type TogglePinResponse struct {
	Pinned      bool                   `json:"pinned"`
	Preferences preference.Preferences `json:"preferences"`
}

// PreferenceHandler serves per-user list screen preferences
type PreferenceHandler struct {
	BaseHandler
	prefs *prefapp.Service
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(prefs *prefapp.Service) *PreferenceHandler {
	return &PreferenceHandler{prefs: prefs}
}

// Get godoc
// @Summary      Get list preferences
// @Tags         preferences
// @Produce      json
// @Param        kind path string true "Module"
// @Success      200 {object} dto.Response{data=preference.Preferences}
// @Security     BearerAuth
// @Router       /preferences/{kind} [get]
func (h *PreferenceHandler) Get(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	prefs, err := h.prefs.Get(c.Request.Context(), session, kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, prefs)
}

// Update godoc
// @Summary      Save list preferences
// @Tags         preferences
// @Accept       json
// @Produce      json
// @Param        kind    path string                   true "Module"
// @Param        request body UpdatePreferencesRequest true "Preferences"
// @Success      200 {object} dto.Response{data=preference.Preferences}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /preferences/{kind} [put]
func (h *PreferenceHandler) Update(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	var req UpdatePreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	prefs, err := h.prefs.Set(c.Request.Context(), session, kind, preference.Preferences{
		Kind:     kind,
		ViewMode: preference.ViewMode(req.ViewMode),
		Pinned:   req.Pinned,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, prefs)
}

// TogglePin godoc
// @Summary      Pin or unpin a record
// @Tags         preferences
// @Produce      json
// @Param        kind path string true "Module"
// @Param        id   path string true "Record ID"
// @Success      200 {object} dto.Response{data=TogglePinResponse}
// @Security     BearerAuth
// @Router       /preferences/{kind}/pins/{id} [post]
func (h *PreferenceHandler) TogglePin(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	id, ok := h.id(c)
	if !ok {
		return
	}
	prefs, pinned, err := h.prefs.TogglePin(c.Request.Context(), session, kind, id.String())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, TogglePinResponse{Pinned: pinned, Preferences: prefs})
}
