package record

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/salesdesk/backend/internal/domain/listview"
	"github.com/salesdesk/backend/internal/domain/record"
)

// RecordResponse is a record as returned to clients
type RecordResponse struct {
	ID            uuid.UUID     `json:"id"`
	Kind          record.Kind   `json:"kind"`
	ReferenceCode string        `json:"reference_code,omitempty"`
	OwnerRef      string        `json:"owner_ref,omitempty"`
	Style         string        `json:"style"`
	Fields        record.Fields `json:"fields"`
	ImageURL      string        `json:"image_url,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ToRecordResponse converts a domain record and decorates it with its style
// class.
func ToRecordResponse(schema *record.Schema, r *record.Record) RecordResponse {
	return RecordResponse{
		ID:            r.ID,
		Kind:          r.Kind,
		ReferenceCode: r.ReferenceCode,
		OwnerRef:      r.OwnerRef,
		Style:         schema.Styles.ClassOf(r),
		Fields:        r.Fields,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ToRecordResponses converts a slice of records
func ToRecordResponses(schema *record.Schema, records []*record.Record) []RecordResponse {
	out := make([]RecordResponse, len(records))
	for i, r := range records {
		out[i] = ToRecordResponse(schema, r)
	}
	return out
}

// Sort orders understood by List
const (
	SortDefault = ""
	SortRecent  = "recent"
)

// Paging modes understood by List
const (
	PaginateItems = "items"
	PaginateGroup = "group"
)

// GroupByDay groups on the calendar day of the module's date field.
const GroupByDay = "day"

// ListQuery is the list screen state sent by the client.
type ListQuery struct {
	Filter   listview.FilterState
	Page     int
	PageSize int
	// All returns the whole filtered list on one page.
	All      bool
	Sort     string
	GroupBy  string
	Paginate string
}

// PageMeta describes the returned page
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// GroupSummary is one group of a grouped list
type GroupSummary struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// ListResult is one page of a list screen
type ListResult struct {
	Items  []RecordResponse `json:"items"`
	Meta   PageMeta         `json:"meta"`
	Groups []GroupSummary   `json:"groups,omitempty"`
	// Group is the key shown on this page when paging by group.
	Group string `json:"group,omitempty"`
}

// Attachment is a file uploaded with a record
type Attachment struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// CreateInput is the input of Create
type CreateInput struct {
	Fields     record.Fields
	Attachment *Attachment
}

// UpdateInput is the input of Update
type UpdateInput struct {
	Fields     record.Fields
	Attachment *Attachment
}

// NoticeLevel is the severity of a Notice
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is the one-shot message shown after a mutation.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// ForwardResult reports the secondary forward of a write.
type ForwardResult struct {
	Attempted bool   `json:"attempted"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
}

// WriteResult is returned by every single-record mutation
type WriteResult struct {
	Record  RecordResponse `json:"record"`
	Notice  Notice         `json:"notice"`
	Forward ForwardResult  `json:"forward"`
}
