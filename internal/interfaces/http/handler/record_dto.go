package handler

import (
	"strings"
	"time"

	recordapp "github.com/salesdesk/backend/internal/application/record"
	"github.com/salesdesk/backend/internal/domain/bulk"
	"github.com/salesdesk/backend/internal/domain/listview"
	"github.com/salesdesk/backend/internal/domain/record"
)

// ListRecordsRequest holds the list screen state sent as query parameters.
// Enum filters use the enum field name as parameter, repeated or
// comma-separated (status=Open&status=Closed or status=Open,Closed).
type ListRecordsRequest struct {
	Search   string `form:"search"`
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Agent    string `form:"agent"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1"`
	All      bool   `form:"all"`
	Sort     string `form:"sort" binding:"omitempty,oneof=recent"`
	GroupBy  string `form:"group_by"`
	Paginate string `form:"paginate" binding:"omitempty,oneof=items group"`
}

// Query converts the request into the application list query, reading enum
// selections through get. Paging by group without a group_by groups on the
// module's default group field.
func (r ListRecordsRequest) Query(schema *record.Schema, get func(string) []string) recordapp.ListQuery {
	enums := make(map[string][]string)
	for _, e := range schema.EnumFields {
		var values []string
		for _, raw := range get(e.Name) {
			for _, v := range strings.Split(raw, ",") {
				if v = strings.TrimSpace(v); v != "" {
					values = append(values, v)
				}
			}
		}
		if len(values) > 0 {
			enums[e.Name] = values
		}
	}

	groupBy := r.GroupBy
	if groupBy == "" && r.Paginate == recordapp.PaginateGroup {
		groupBy = schema.GroupField
	}

	return recordapp.ListQuery{
		Filter: listview.FilterState{
			Search: r.Search,
			Enums:  enums,
			From:   r.From,
			To:     r.To,
			Agent:  r.Agent,
		},
		Page:     r.Page,
		PageSize: r.PageSize,
		All:      r.All,
		Sort:     r.Sort,
		GroupBy:  groupBy,
		Paginate: r.Paginate,
	}
}

// ChangeStatusRequest is a quick change of one enumerated field. An empty
// field means the module's status field.
type ChangeStatusRequest struct {
	Field string `json:"field"`
	Value string `json:"value" binding:"required"`
}

// BulkRequest selects the records of a bulk action
type BulkRequest struct {
	IDs   []string `json:"ids" binding:"required,min=1,max=1000"`
	Field string   `json:"field"`
	Value string   `json:"value"`
}

// BulkDeleteRequest selects the records to delete. Confirmed must be true.
type BulkDeleteRequest struct {
	IDs       []string `json:"ids" binding:"required,min=1,max=1000"`
	Confirmed bool     `json:"confirmed"`
}

// BatchInsertResponse reports a batch insert
type BatchInsertResponse struct {
	Inserted int                        `json:"inserted"`
	Records  []recordapp.RecordResponse `json:"records"`
}

// ListImportHistoryRequest filters the import history listing
type ListImportHistoryRequest struct {
	Kind     string `form:"kind"`
	Status   string `form:"status" binding:"omitempty,oneof=pending processing completed failed"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ImportHistoryResponse is one import as listed to clients
type ImportHistoryResponse struct {
	ID           string            `json:"id"`
	Kind         string            `json:"kind"`
	FileName     string            `json:"file_name"`
	FileSize     int64             `json:"file_size"`
	Status       string            `json:"status"`
	TotalRows    int               `json:"total_rows"`
	InsertedRows int               `json:"inserted_rows"`
	Message      string            `json:"message,omitempty"`
	Constants    map[string]string `json:"constants,omitempty"`
	ImportedBy   string            `json:"imported_by"`
	StartedAt    *time.Time        `json:"started_at,omitempty"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

func toImportHistoryResponse(h *bulk.ImportHistory) ImportHistoryResponse {
	return ImportHistoryResponse{
		ID:           h.ID.String(),
		Kind:         string(h.Kind),
		FileName:     h.FileName,
		FileSize:     h.FileSize,
		Status:       string(h.Status),
		TotalRows:    h.TotalRows,
		InsertedRows: h.InsertedRows,
		Message:      h.Message,
		Constants:    h.Constants,
		ImportedBy:   h.ImportedBy,
		StartedAt:    h.StartedAt,
		CompletedAt:  h.CompletedAt,
		CreatedAt:    h.CreatedAt,
	}
}
