package bulk

import (
	"fmt"
	"time"

	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/domain/shared"
)

// ImportStatus represents the status of an import operation
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// IsValid checks if the status is valid
func (s ImportStatus) IsValid() bool {
	switch s {
	case ImportStatusPending, ImportStatusProcessing, ImportStatusCompleted, ImportStatusFailed:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s ImportStatus) IsTerminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed
}

// ImportHistory records one spreadsheet import. Imports are all-or-nothing,
// so a history either carries the inserted count or a single failure
// message; there are no per-row errors.
type ImportHistory struct {
	shared.BaseEntity
	Kind         record.Kind
	FileName     string
	FileSize     int64
	TotalRows    int
	InsertedRows int
	Status       ImportStatus
	Message      string
	Constants    map[string]string
	ImportedBy   string
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// NewImportHistory creates a pending history entry.
func NewImportHistory(kind record.Kind, fileName string, fileSize int64, importedBy string) (*ImportHistory, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", fmt.Sprintf("Invalid module: %s", kind))
	}
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size cannot be negative")
	}
	return &ImportHistory{
		BaseEntity: shared.NewBaseEntity(time.Now()),
		Kind:       kind,
		FileName:   fileName,
		FileSize:   fileSize,
		Status:     ImportStatusPending,
		Constants:  map[string]string{},
		ImportedBy: importedBy,
	}, nil
}

// StartProcessing marks the import as started
func (h *ImportHistory) StartProcessing(totalRows int) error {
	if h.Status != ImportStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start processing from state: %s", h.Status))
	}
	if totalRows < 0 {
		return shared.NewDomainError("INVALID_TOTAL_ROWS", "Total rows cannot be negative")
	}
	now := time.Now()
	h.Status = ImportStatusProcessing
	h.TotalRows = totalRows
	h.StartedAt = &now
	h.Touch(now)
	return nil
}

// Complete marks the import as successfully completed
func (h *ImportHistory) Complete(inserted int) error {
	if h.Status != ImportStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete from state: %s", h.Status))
	}
	now := time.Now()
	h.Status = ImportStatusCompleted
	h.InsertedRows = inserted
	h.CompletedAt = &now
	h.Touch(now)
	return nil
}

// Fail marks the whole batch as failed.
func (h *ImportHistory) Fail(message string) error {
	if h.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail from terminal state: %s", h.Status))
	}
	now := time.Now()
	h.Status = ImportStatusFailed
	h.InsertedRows = 0
	h.Message = message
	h.CompletedAt = &now
	h.Touch(now)
	return nil
}

// Duration returns the duration of the import operation
func (h *ImportHistory) Duration() time.Duration {
	if h.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if h.CompletedAt != nil {
		end = *h.CompletedAt
	}
	return end.Sub(*h.StartedAt)
}
