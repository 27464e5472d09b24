package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	recordapp "github.com/salesdesk/backend/internal/application/record"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/interfaces/http/dto"
)

// fieldsFormKey carries the JSON fields of a multipart create/update
const (
	fieldsFormKey = "fields"
	imageFormKey  = "image"
)

// RecordHandler serves the list screens and record forms of every module
type RecordHandler struct {
	BaseHandler
	records *recordapp.Service
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(records *recordapp.Service) *RecordHandler {
	return &RecordHandler{records: records}
}

// ListSchemas godoc
// @Summary      List module schemas
// @Tags         records
// @Produce      json
// @Success      200 {object} dto.Response{data=[]record.Schema}
// @Router       /schemas [get]
func (h *RecordHandler) ListSchemas(c *gin.Context) {
	schemas := make([]*record.Schema, 0, len(record.Kinds))
	for _, k := range record.Kinds {
		schemas = append(schemas, record.MustLookup(k))
	}
	h.Success(c, schemas)
}

// GetSchema godoc
// @Summary      Get a module schema
// @Description  Columns, enum options, field gate and style table of one module
// @Tags         records
// @Produce      json
// @Param        kind path string true "Module" Enums(tickets, accounts, projects, activities, inventory)
// @Success      200 {object} dto.Response{data=record.Schema}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /records/{kind}/schema [get]
func (h *RecordHandler) GetSchema(c *gin.Context) {
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	schema, err := h.records.Schema(kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, schema)
}

// List godoc
// @Summary      List records
// @Description  Filtered, role-scoped page of one module
// @Tags         records
// @Produce      json
// @Param        kind      path  string true  "Module"
// @Param        search    query string false "Free text"
// @Param        from      query string false "Date from (YYYY-MM-DD)"
// @Param        to        query string false "Date to (YYYY-MM-DD)"
// @Param        agent     query string false "Owner reference id"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        all       query bool   false "Return every filtered record"
// @Param        sort      query string false "recent"
// @Param        group_by  query string false "day or a field name; defaults to the module group field when paginate=group"
// @Param        paginate  query string false "items or group"
// @Success      200 {object} dto.Response{data=[]recordapp.RecordResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /records/{kind} [get]
func (h *RecordHandler) List(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	query, ok := h.listQuery(c, kind)
	if !ok {
		return
	}

	result, err := h.records.List(c.Request.Context(), session, kind, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	meta := &dto.Meta{
		Total:      int64(result.Meta.Total),
		Page:       result.Meta.Page,
		PageSize:   result.Meta.PageSize,
		TotalPages: result.Meta.TotalPages,
		Group:      result.Group,
	}
	for _, g := range result.Groups {
		meta.Groups = append(meta.Groups, dto.GroupMeta{Key: g.Key, Count: g.Count})
	}
	c.JSON(http.StatusOK, dto.Response{Success: true, Data: result.Items, Meta: meta})
}

// listQuery binds the list query parameters shared by List and Export.
func (h *BaseHandler) listQuery(c *gin.Context, kind record.Kind) (recordapp.ListQuery, bool) {
	var req ListRecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return recordapp.ListQuery{}, false
	}
	return req.Query(record.MustLookup(kind), c.QueryArray), true
}

// Get godoc
// @Summary      Get a record
// @Tags         records
// @Produce      json
// @Param        kind path string true "Module"
// @Param        id   path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=recordapp.RecordResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /records/{kind}/{id} [get]
func (h *RecordHandler) Get(c *gin.Context) {
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

	rec, err := h.records.Get(c.Request.Context(), session, kind, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}

// Create godoc
// @Summary      Create a record
// @Description  JSON object of fields, or multipart with a "fields" JSON part and an optional "image" file
// @Tags         records
// @Accept       json,mpfd
// @Produce      json
// @Param        kind path string true "Module"
// @Success      201 {object} dto.Response{data=recordapp.WriteResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /records/{kind} [post]
func (h *RecordHandler) Create(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	fields, attachment, done, ok := h.payload(c)
	if !ok {
		return
	}
	defer done()

	result, err := h.records.Create(c.Request.Context(), session, kind, recordapp.CreateInput{
		Fields:     fields,
		Attachment: attachment,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Update godoc
// @Summary      Replace a record
// @Description  Whole-record replace; the reference code is kept
// @Tags         records
// @Accept       json,mpfd
// @Produce      json
// @Param        kind path string true "Module"
// @Param        id   path string true "Record ID" format(uuid)
// @Success      200 {object} dto.Response{data=recordapp.WriteResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /records/{kind}/{id} [put]
func (h *RecordHandler) Update(c *gin.Context) {
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
	fields, attachment, done, ok := h.payload(c)
	if !ok {
		return
	}
	defer done()

	result, err := h.records.Update(c.Request.Context(), session, kind, id, recordapp.UpdateInput{
		Fields:     fields,
		Attachment: attachment,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ChangeStatus godoc
// @Summary      Quick status change
// @Tags         records
// @Accept       json
// @Produce      json
// @Param        kind    path string              true "Module"
// @Param        id      path string              true "Record ID" format(uuid)
// @Param        request body ChangeStatusRequest true "Field and new value"
// @Success      200 {object} dto.Response{data=recordapp.WriteResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /records/{kind}/{id}/status [put]
func (h *RecordHandler) ChangeStatus(c *gin.Context) {
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
	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.records.ChangeStatus(c.Request.Context(), session, kind, id, req.Field, req.Value)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Delete godoc
// @Summary      Delete a record
// @Tags         records
// @Param        kind path string true "Module"
// @Param        id   path string true "Record ID" format(uuid)
// @Success      204
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /records/{kind}/{id} [delete]
func (h *RecordHandler) Delete(c *gin.Context) {
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

	if err := h.records.Delete(c.Request.Context(), session, kind, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// payload reads the fields of a create/update and the optional image part.
// done closes the uploaded file and must be called once the write finished.
func (h *RecordHandler) payload(c *gin.Context) (record.Fields, *recordapp.Attachment, func(), bool) {
	noop := func() {}

	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var fields record.Fields
		if err := c.ShouldBindJSON(&fields); err != nil || fields == nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body must be a JSON object of fields")
			return nil, nil, noop, false
		}
		return fields, nil, noop, true
	}

	fields := record.Fields{}
	if raw := c.PostForm(fieldsFormKey); raw != "" {
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "The fields part must be a JSON object")
			return nil, nil, noop, false
		}
	}

	header, err := c.FormFile(imageFormKey)
	if errors.Is(err, http.ErrMissingFile) {
		return fields, nil, noop, true
	}
	if err != nil {
		h.BadRequest(c, "Invalid multipart body")
		return nil, nil, noop, false
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Failed to read uploaded file")
		return nil, nil, noop, false
	}

	return fields, &recordapp.Attachment{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	}, func() { _ = file.Close() }, true
}
