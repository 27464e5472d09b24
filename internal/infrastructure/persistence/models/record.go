package models

import (
	"github.com/salesdesk/backend/internal/domain/record"
)

// RecordModel is the persistence model for every module's rows. The kind
// column partitions the table; the business payload is stored as JSON.
type RecordModel struct {
	BaseModel
	Kind          record.Kind   `gorm:"type:varchar(32);not null;index:idx_records_kind_created,priority:1"`
	ReferenceCode string        `gorm:"type:varchar(100);index"`
	OwnerRef      string        `gorm:"type:varchar(100);index"`
	Fields        record.Fields `gorm:"type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (RecordModel) TableName() string {
	return "records"
}

// ToDomain converts the persistence model to a domain Record.
func (m *RecordModel) ToDomain() *record.Record {
	fields := m.Fields
	if fields == nil {
		fields = record.Fields{}
	}
	return &record.Record{
		BaseEntity:    m.BaseModel.ToDomain(),
		Kind:          m.Kind,
		ReferenceCode: m.ReferenceCode,
		OwnerRef:      m.OwnerRef,
		Fields:        fields,
	}
}

// FromDomain populates the persistence model from a domain Record.
func (m *RecordModel) FromDomain(r *record.Record) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.Kind = r.Kind
	m.ReferenceCode = r.ReferenceCode
	m.OwnerRef = r.OwnerRef
	m.Fields = r.Fields
}

// RecordModelFromDomain creates a new persistence model from a domain Record.
func RecordModelFromDomain(r *record.Record) *RecordModel {
	m := &RecordModel{}
	m.FromDomain(r)
	return m
}
