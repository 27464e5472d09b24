package record

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// Fields is the opaque business payload of a record, keyed by the field
// names clients use (companyname, referenceid, TicketReferenceNumber, ...).
type Fields map[string]any

// String renders the value of key as text. Missing keys and nulls are "".
func (f Fields) String(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// Has reports whether key is present.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into f, overwriting.
func (f Fields) Merge(other map[string]any) {
	for k, v := range other {
		f[k] = v
	}
}

// Value implements driver.Valuer
func (f Fields) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (f *Fields) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = Fields{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("record fields: unsupported scan type %T", src)
	}
	out := Fields{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("record fields: %w", err)
		}
	}
	*f = out
	return nil
}
