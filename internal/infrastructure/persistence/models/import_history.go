package models

import (
	"encoding/json"
	"time"

	"github.com/salesdesk/backend/internal/domain/bulk"
	"github.com/salesdesk/backend/internal/domain/record"
)

// ImportHistoryModel is the persistence model for the ImportHistory domain entity.
type ImportHistoryModel struct {
	BaseModel
	Kind         record.Kind       `gorm:"type:varchar(32);not null;index"`
	FileName     string            `gorm:"type:varchar(255);not null"`
	FileSize     int64             `gorm:"not null;default:0"`
	TotalRows    int               `gorm:"not null;default:0"`
	InsertedRows int               `gorm:"not null;default:0"`
	Status       bulk.ImportStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Message      string            `gorm:"type:text"`
	Constants    string            `gorm:"type:jsonb;default:'{}'"`
	ImportedBy   string            `gorm:"type:varchar(100);index"`
	StartedAt    *time.Time
	CompletedAt  *time.Time
}

// TableName returns the table name for GORM
func (ImportHistoryModel) TableName() string {
	return "import_histories"
}

// ToDomain converts the persistence model to a domain ImportHistory entity.
func (m *ImportHistoryModel) ToDomain() *bulk.ImportHistory {
	history := &bulk.ImportHistory{
		BaseEntity:   m.BaseModel.ToDomain(),
		Kind:         m.Kind,
		FileName:     m.FileName,
		FileSize:     m.FileSize,
		TotalRows:    m.TotalRows,
		InsertedRows: m.InsertedRows,
		Status:       m.Status,
		Message:      m.Message,
		ImportedBy:   m.ImportedBy,
		StartedAt:    m.StartedAt,
		CompletedAt:  m.CompletedAt,
	}
	if m.Constants != "" {
		_ = json.Unmarshal([]byte(m.Constants), &history.Constants)
	}
	return history
}

// FromDomain populates the persistence model from a domain ImportHistory entity.
func (m *ImportHistoryModel) FromDomain(h *bulk.ImportHistory) {
	m.FromDomainBaseEntity(h.BaseEntity)
	m.Kind = h.Kind
	m.FileName = h.FileName
	m.FileSize = h.FileSize
	m.TotalRows = h.TotalRows
	m.InsertedRows = h.InsertedRows
	m.Status = h.Status
	m.Message = h.Message
	m.ImportedBy = h.ImportedBy
	m.StartedAt = h.StartedAt
	m.CompletedAt = h.CompletedAt

	m.Constants = "{}"
	if len(h.Constants) > 0 {
		if b, err := json.Marshal(h.Constants); err == nil {
			m.Constants = string(b)
		}
	}
}

// ImportHistoryModelFromDomain creates a new persistence model from a domain ImportHistory entity.
func ImportHistoryModelFromDomain(h *bulk.ImportHistory) *ImportHistoryModel {
	m := &ImportHistoryModel{}
	m.FromDomain(h)
	return m
}
