package handler

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	importapp "github.com/salesdesk/backend/internal/application/import"
	recordapp "github.com/salesdesk/backend/internal/application/record"
	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/infrastructure/spreadsheet"
	"github.com/salesdesk/backend/internal/interfaces/http/dto"
)

// ImportHandler handles spreadsheet import and export along with the
// client-side batch insert
type ImportHandler struct {
	BaseHandler
	records  *recordapp.Service
	imports  *importapp.Service
	exports  *importapp.ExportService
	history  *importapp.ImportHistoryService
	maxBatch int
}

// NewImportHandler creates a new import handler
func NewImportHandler(
	records *recordapp.Service,
	imports *importapp.Service,
	exports *importapp.ExportService,
	history *importapp.ImportHistoryService,
	maxBatch int,
) *ImportHandler {
	return &ImportHandler{
		records:  records,
		imports:  imports,
		exports:  exports,
		history:  history,
		maxBatch: maxBatch,
	}
}

// Import godoc
// @Summary      Import a spreadsheet
// @Description  The first sheet is read, its header row skipped and columns mapped by position.
// @Description  Other form values are constants applied to every row (manager, tsm, referenceid, quota).
// @Tags         import
// @Accept       multipart/form-data
// @Produce      json
// @Param        kind path     string true "Module"
// @Param        file formData file   true "Spreadsheet (.xlsx or .csv)"
// @Success      201 {object} dto.Response{data=importapp.ImportResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /records/{kind}/import [post]
func (h *ImportHandler) Import(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeImportInvalidFile, "A file is required")
		return
	}
	f, err := header.Open()
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeImportInvalidFile, "Failed to read the uploaded file")
		return
	}
	defer f.Close()

	constants := make(map[string]string)
	if form := c.Request.MultipartForm; form != nil {
		for k, v := range form.Value {
			if len(v) > 0 {
				constants[k] = v[0]
			}
		}
	}

	result, err := h.imports.Import(c.Request.Context(), session, kind, importapp.ImportInput{
		FileName:  header.Filename,
		FileSize:  header.Size,
		Body:      f,
		Constants: constants,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Batch godoc
// @Summary      Batch insert
// @Description  Inserts an array of field maps in one transaction; all or nothing.
// @Tags         import
// @Accept       json
// @Produce      json
// @Param        kind    path string          true "Module"
// @Param        request body []map[string]any true "Rows"
// @Success      201 {object} dto.Response{data=BatchInsertResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /records/{kind}/batch [post]
func (h *ImportHandler) Batch(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	var rows []record.Fields
	if err := c.ShouldBindJSON(&rows); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Body must be an array of objects")
		return
	}
	if len(rows) == 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeImportEmptyFile, "No rows to insert")
		return
	}
	if h.maxBatch > 0 && len(rows) > h.maxBatch {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeImportTooManyRows, "Too many rows in one batch")
		return
	}

	inserted, err := h.records.CreateBatch(c.Request.Context(), session, kind, rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, BatchInsertResponse{
		Inserted: len(inserted),
		Records:  recordapp.ToRecordResponses(record.MustLookup(kind), inserted),
	})
}

// Export godoc
// @Summary      Export records
// @Description  Writes every record passing the list filters, ignoring pagination.
// @Tags         import
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Param        kind   path  string true  "Module"
// @Param        format query string false "xlsx (default) or csv"
// @Success      200 {file} binary
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /records/{kind}/export [get]
func (h *ImportHandler) Export(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	kind, ok := h.kind(c)
	if !ok {
		return
	}
	format := spreadsheet.Format(c.DefaultQuery("format", string(spreadsheet.FormatXLSX)))
	if format != spreadsheet.FormatXLSX && format != spreadsheet.FormatCSV {
		h.BadRequest(c, "format must be xlsx or csv")
		return
	}
	query, ok := h.listQuery(c, kind)
	if !ok {
		return
	}

	file, err := h.exports.Export(c.Request.Context(), session, kind, query, format)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.FileName}))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// ListHistory godoc
// @Summary      List imports
// @Description  Administrators see every import, everyone else only their own.
// @Tags         import
// @Produce      json
// @Param        kind      query string false "Module"
// @Param        status    query string false "pending, processing, completed or failed"
// @Param        page      query int    false "Page" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]ImportHistoryResponse,meta=dto.Meta}
// @Router       /imports [get]
func (h *ImportHandler) ListHistory(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	var req ListImportHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.history.ListHistory(c.Request.Context(), session, importapp.ListHistoryFilter{
		Kind:   req.Kind,
		Status: req.Status,
	}, req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	items := make([]ImportHistoryResponse, len(result.Items))
	for i, item := range result.Items {
		items[i] = toImportHistoryResponse(item)
	}
	h.SuccessWithMeta(c, items, result.Total, result.Page, result.PageSize)
}

// GetHistory godoc
// @Summary      Get an import
// @Tags         import
// @Produce      json
// @Param        id path string true "Import ID" format(uuid)
// @Success      200 {object} dto.Response{data=ImportHistoryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /imports/{id} [get]
func (h *ImportHandler) GetHistory(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid id format")
		return
	}

	item, err := h.history.GetHistory(c.Request.Context(), session, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toImportHistoryResponse(item))
}
