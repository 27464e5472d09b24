package record

import (
	"time"

	"github.com/salesdesk/backend/internal/domain/shared"
)

// Record is one business row of a module. Only the columns needed to find
// and own a row are typed; everything else lives in Fields.
type Record struct {
	shared.BaseEntity
	Kind          Kind
	ReferenceCode string
	OwnerRef      string
	Fields        Fields
}

// NewRecord creates a record of kind carrying fields. The owner is taken
// from the kind's owner field and the reference code from its reference
// target when present.
func NewRecord(kind Kind, fields Fields, now time.Time) *Record {
	if fields == nil {
		fields = Fields{}
	}
	r := &Record{
		BaseEntity: shared.NewBaseEntity(now),
		Kind:       kind,
		Fields:     fields,
	}
	if schema, err := Lookup(kind); err == nil {
		r.sync(schema)
		if schema.Reference != nil {
			r.ReferenceCode = fields.String(schema.Reference.Target)
		}
	}
	return r
}

// Value returns the text value of field. "id" resolves to the record id so
// the list engine can treat typed columns and payload fields alike.
func (r *Record) Value(field string) string {
	switch field {
	case "id", "_id":
		return r.ID.String()
	}
	return r.Fields.String(field)
}

// Replace swaps the payload for fields, keeping the generated reference
// code. Last write wins; there is no version check.
func (r *Record) Replace(schema *Schema, fields Fields, now time.Time) {
	next := fields.Clone()
	if schema.Reference != nil && r.ReferenceCode != "" {
		next[schema.Reference.Target] = r.ReferenceCode
	}
	r.Fields = next
	r.sync(schema)
	r.Touch(now)
}

// Patch sets the given fields, leaving the rest untouched.
func (r *Record) Patch(schema *Schema, changes map[string]any, now time.Time) {
	if r.Fields == nil {
		r.Fields = Fields{}
	}
	for k, v := range changes {
		if schema.Reference != nil && k == schema.Reference.Target && r.ReferenceCode != "" {
			continue
		}
		r.Fields[k] = v
	}
	r.sync(schema)
	r.Touch(now)
}

func (r *Record) sync(schema *Schema) {
	r.OwnerRef = r.Fields.String(schema.OwnerField)
}
