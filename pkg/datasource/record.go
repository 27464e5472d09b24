package datasource

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Record is one record as the server returns it. The REST service nests
// field values under "fields"; flat documents from older backends carry
// them at the top level and may name the id "_id".
type Record map[string]any

var idKeys = [...]string{"id", "_id"}

// ID returns the record id from "id" or "_id".
func (r Record) ID() string {
	for _, key := range idKeys {
		switch v := r[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// Field returns a field value, looking under "fields" first.
func (r Record) Field(name string) any {
	if nested, ok := r["fields"].(map[string]any); ok {
		if v, ok := nested[name]; ok {
			return v
		}
	}
	return r[name]
}

// String returns a field value as text; missing fields are "".
func (r Record) String(name string) string {
	switch v := r.Field(name).(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Params is the filter state sent with a list request. The client always
// asks for the whole filtered list; paging happens locally.
type Params struct {
	Search  string
	Enums   map[string][]string
	From    string // YYYY-MM-DD, inclusive
	To      string // YYYY-MM-DD, inclusive
	Agent   string
	Sort    string // "" or "recent"
	GroupBy string
}

func (p Params) values() url.Values {
	q := url.Values{}
	q.Set("all", "true")
	set := func(key, value string) {
		if value = strings.TrimSpace(value); value != "" {
			q.Set(key, value)
		}
	}
	set("search", p.Search)
	set("from", p.From)
	set("to", p.To)
	set("agent", p.Agent)
	set("sort", p.Sort)
	set("group_by", p.GroupBy)

	names := make([]string, 0, len(p.Enums))
	for name := range p.Enums {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range p.Enums[name] {
			if v = strings.TrimSpace(v); v != "" {
				q.Add(name, v)
			}
		}
	}
	return q
}

// NoticeLevel is the severity of a Notice
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a one-shot message for the screen.
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

// WriteResult is the server's answer to a create or update.
type WriteResult struct {
	Record  Record        `json:"record"`
	Notice  Notice        `json:"notice"`
	Forward ForwardResult `json:"forward"`
}

// BulkResult lists what a bulk action changed.
type BulkResult struct {
	Mode          string   `json:"mode"`
	Affected      []string `json:"affected"`
	Records       []Record `json:"records,omitempty"`
	Forwarded     []string `json:"forwarded,omitempty"`
	ForwardFailed []string `json:"forward_failed,omitempty"`
}

// Schema is the part of a module schema the client uses.
type Schema struct {
	Kind          string   `json:"kind"`
	Title         string   `json:"title"`
	ImportColumns []string `json:"import_columns"`
	ImportConsts  []string `json:"import_constants"`
	QuickChange   []string `json:"quick_change"`
	BulkEditable  []string `json:"bulk_editable"`
}
