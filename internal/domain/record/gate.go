package record

import "slices"

// FieldGate decides which form fields are shown for the current value of a
// selector field. It gates presentation only; hidden values are kept.
type FieldGate struct {
	Selector string              `json:"selector"`
	Always   []string            `json:"always"`
	Rules    map[string][]string `json:"rules"`
}

// Visible returns the fields shown when the selector equals value.
func (g *FieldGate) Visible(value string) []string {
	out := slices.Clone(g.Always)
	return append(out, g.Rules[value]...)
}

// IsVisible reports whether field is shown for value.
func (g *FieldGate) IsVisible(field, value string) bool {
	return slices.Contains(g.Always, field) || slices.Contains(g.Rules[value], field)
}
