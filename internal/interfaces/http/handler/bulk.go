package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	recordapp "github.com/salesdesk/backend/internal/application/record"
	"github.com/salesdesk/backend/internal/domain/listview"
	"github.com/salesdesk/backend/internal/interfaces/http/dto"
)

// BulkHandler applies bulk actions to a selection of records
type BulkHandler struct {
	BaseHandler
	bulk *recordapp.BulkService
}

// NewBulkHandler creates a new bulk handler
func NewBulkHandler(bulk *recordapp.BulkService) *BulkHandler {
	return &BulkHandler{bulk: bulk}
}

// Delete godoc
// @Summary      Bulk delete
// @Description  Deletes every selected record in one transaction. Requires confirmed=true.
// @Tags         bulk
// @Accept       json
// @Produce      json
// @Param        kind    path string            true "Module"
// @Param        request body BulkDeleteRequest true "Selection"
// @Success      200 {object} dto.Response{data=recordapp.BulkResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /records/{kind}/bulk/delete [post]
func (h *BulkHandler) Delete(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if !req.Confirmed {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeValidationRequired, "Bulk delete must be confirmed")
		return
	}

	result, err := h.bulk.Execute(c.Request.Context(), session, kind, listview.BulkDelete, recordapp.BulkInput{IDs: req.IDs})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Apply godoc
// @Summary      Bulk update
// @Description  mode is edit (field+value), status (value), transfer-manager or transfer-agent (value = target reference id)
// @Tags         bulk
// @Accept       json
// @Produce      json
// @Param        kind    path string      true "Module"
// @Param        mode    path string      true "Bulk mode" Enums(edit, status, transfer-manager, transfer-agent)
// @Param        request body BulkRequest true "Selection and new value"
// @Success      200 {object} dto.Response{data=recordapp.BulkResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /records/{kind}/bulk/{mode} [put]
func (h *BulkHandler) Apply(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	mode, err := listview.ParseBulkMode(c.Param("mode"))
	if err != nil || mode == listview.BulkNone || mode == listview.BulkDelete {
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Unknown bulk action")
		return
	}
	var req BulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.bulk.Execute(c.Request.Context(), session, kind, mode, recordapp.BulkInput{
		IDs:   req.IDs,
		Field: req.Field,
		Value: req.Value,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
