package record

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/salesdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EnumField is a field restricted to a fixed option list.
type EnumField struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Options []string `json:"options"`
}

// Column maps a field to a spreadsheet header.
type Column struct {
	Field  string `json:"field"`
	Header string `json:"header"`
}

// ForwardRule names the field/value pair that sends a record to the
// secondary backend after it is written.
type ForwardRule struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Matches reports whether fields trigger the forward.
func (r *ForwardRule) Matches(fields Fields) bool {
	return r != nil && fields.String(r.Field) == r.Value
}

// Schema describes one module: which fields are searched, filtered,
// grouped, imported and exported, and which derived values it carries.
type Schema struct {
	Kind          Kind               `json:"kind"`
	Title         string             `json:"title"`
	SearchFields  []string           `json:"search_fields"`
	EnumFields    []EnumField        `json:"enum_fields"`
	DateField     string             `json:"date_field"`
	OwnerField    string             `json:"owner_field"`
	ManagerField  string             `json:"manager_field"`
	TSMField      string             `json:"tsm_field"`
	StatusField   string             `json:"status_field,omitempty"`
	GroupField    string             `json:"group_field,omitempty"`
	NumericFields []string           `json:"numeric_fields,omitempty"`
	Required      []string           `json:"required"`
	QuickChange   []string           `json:"quick_change,omitempty"`
	BulkEditable  []string           `json:"bulk_editable,omitempty"`
	ImportColumns []string           `json:"import_columns,omitempty"`
	ImportConsts  []string           `json:"import_constants,omitempty"`
	ExportColumns []Column           `json:"export_columns"`
	Reference     *ReferenceTemplate `json:"reference,omitempty"`
	Gate          *FieldGate         `json:"gate,omitempty"`
	Styles        StyleTable         `json:"styles"`
	Forward       *ForwardRule       `json:"forward,omitempty"`
	Attachments   bool               `json:"attachments"`
}

// Enum returns the enum definition of name.
func (s *Schema) Enum(name string) (EnumField, bool) {
	for _, e := range s.EnumFields {
		if e.Name == name {
			return e, true
		}
	}
	return EnumField{}, false
}

// CheckQuickChange validates a status/remarks quick change.
func (s *Schema) CheckQuickChange(field, value string) error {
	if !slices.Contains(s.QuickChange, field) {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Field %q does not support quick change", field))
	}
	return s.checkOption(field, value)
}

// CheckBulkEdit validates a bulk field edit.
func (s *Schema) CheckBulkEdit(field, value string) error {
	if !slices.Contains(s.BulkEditable, field) {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Field %q cannot be bulk edited", field))
	}
	if _, ok := s.Enum(field); ok {
		return s.checkOption(field, value)
	}
	return nil
}

// CheckStatus validates a bulk status change against the status field.
func (s *Schema) CheckStatus(value string) error {
	if s.StatusField == "" {
		return shared.NewDomainError("INVALID_STATE", "Module has no status field")
	}
	return s.checkOption(s.StatusField, value)
}

func (s *Schema) checkOption(field, value string) error {
	e, ok := s.Enum(field)
	if !ok {
		return nil
	}
	if !slices.Contains(e.Options, value) {
		return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("%q is not a valid %s", value, e.Label))
	}
	return nil
}

// Validate checks required fields. Everything else is accepted as sent.
func (s *Schema) Validate(fields Fields) error {
	var missing []string
	for _, name := range s.Required {
		if strings.TrimSpace(fields.String(name)) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return shared.NewDomainError("VALIDATION_ERROR", "Missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}

// Coerce parses the numeric fields of fields in place. Empty values become
// zero; anything unparseable is rejected.
func (s *Schema) Coerce(fields Fields) error {
	for _, name := range s.NumericFields {
		if !fields.Has(name) {
			continue
		}
		raw := strings.ReplaceAll(strings.TrimSpace(fields.String(name)), ",", "")
		if raw == "" {
			fields[name] = float64(0)
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Field %q must be a number", name))
		}
		fields[name] = d.InexactFloat64()
	}
	return nil
}

// Stamp fills the date field with now when the caller left it blank.
func (s *Schema) Stamp(fields Fields, now time.Time) {
	if s.DateField == "" {
		return
	}
	if strings.TrimSpace(fields.String(s.DateField)) == "" {
		fields[s.DateField] = now.UTC().Format(time.RFC3339)
	}
}

var registry = map[Kind]*Schema{}

func register(s *Schema) {
	registry[s.Kind] = s
}

// Lookup returns the schema of kind.
func Lookup(kind Kind) (*Schema, error) {
	s, ok := registry[kind]
	if !ok {
		return nil, ErrUnknownKind
	}
	return s, nil
}

// MustLookup is Lookup for kinds known at compile time.
func MustLookup(kind Kind) *Schema {
	s, err := Lookup(kind)
	if err != nil {
		panic(err)
	}
	return s
}
