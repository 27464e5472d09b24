package record

// DefaultStyle is the class of values missing from a style table.
const DefaultStyle = "badge-default"

// StyleTable maps the values of one field to display classes.
type StyleTable struct {
	Field   string            `json:"field"`
	Classes map[string]string `json:"classes"`
}

// Class returns the class for value.
func (t StyleTable) Class(value string) string {
	if c, ok := t.Classes[value]; ok {
		return c
	}
	return DefaultStyle
}

// ClassOf returns the class of r.
func (t StyleTable) ClassOf(r *Record) string {
	if t.Field == "" {
		return DefaultStyle
	}
	return t.Class(r.Value(t.Field))
}
