package listview

import (
	"strings"
	"time"

	"github.com/salesdesk/backend/internal/domain/identity"
	"golang.org/x/text/cases"
)

// DateLayout is the layout of FilterState date bounds.
const DateLayout = "2006-01-02"

// FilterState is the user-controlled filter input of one list screen.
// Zero values mean "not set".
type FilterState struct {
	Search string
	Enums  map[string][]string
	From   string
	To     string
	Agent  string
}

// IsEmpty reports whether no predicate is active.
func (s FilterState) IsEmpty() bool {
	if strings.TrimSpace(s.Search) != "" || s.From != "" || s.To != "" || s.Agent != "" {
		return false
	}
	for _, values := range s.Enums {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// Config names the fields a screen filters on.
type Config struct {
	SearchFields []string
	DateField    string
	OwnerField   string
}

// Engine derives the visible list of a screen from the loaded collection.
type Engine struct {
	cfg        Config
	visibility *Visibility
}

// NewEngine creates an engine. A nil visibility means no role scoping.
func NewEngine(cfg Config, visibility *Visibility) *Engine {
	return &Engine{cfg: cfg, visibility: visibility}
}

// Matcher compiles state and session into one predicate. A record passes
// only if every active predicate holds.
func (e *Engine) Matcher(state FilterState, session identity.Session) func(Item) bool {
	var preds []func(Item) bool

	if e.visibility != nil {
		preds = append(preds, e.visibility.Predicate(session))
	}

	if needle := strings.TrimSpace(state.Search); needle != "" {
		fold := cases.Fold()
		needle = fold.String(needle)
		fields := e.cfg.SearchFields
		preds = append(preds, func(it Item) bool {
			for _, f := range fields {
				if strings.Contains(fold.String(it.Value(f)), needle) {
					return true
				}
			}
			return false
		})
	}

	for field, values := range state.Enums {
		if len(values) == 0 {
			continue
		}
		field, allowed := field, toSet(values)
		preds = append(preds, func(it Item) bool {
			_, ok := allowed[it.Value(field)]
			return ok
		})
	}

	from, hasFrom := parseBound(state.From)
	to, hasTo := parseBound(state.To)
	if (hasFrom || hasTo) && e.cfg.DateField != "" {
		field := e.cfg.DateField
		preds = append(preds, func(it Item) bool {
			day, ok := ParseDay(it.Value(field))
			if !ok {
				return false
			}
			if hasFrom && day.Before(from) {
				return false
			}
			if hasTo && day.After(to) {
				return false
			}
			return true
		})
	}

	if agent := strings.TrimSpace(state.Agent); agent != "" && e.cfg.OwnerField != "" {
		field := e.cfg.OwnerField
		preds = append(preds, func(it Item) bool {
			return it.Value(field) == agent
		})
	}

	return func(it Item) bool {
		for _, p := range preds {
			if !p(it) {
				return false
			}
		}
		return true
	}
}

// Apply returns the items of source that pass state for session, in
// source order. The result never aliases source.
func Apply[T Item](e *Engine, source []T, state FilterState, session identity.Session) []T {
	match := e.Matcher(state, session)
	out := make([]T, 0, len(source))
	for _, it := range source {
		if match(it) {
			out = append(out, it)
		}
	}
	return out
}

// ParseDay extracts the calendar day of a record timestamp. The day is taken
// as written, without converting time zones.
func ParseDay(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return civil(t), true
	}
	for _, layout := range []string{DateLayout, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "01/02/2006"} {
		if t, err := time.Parse(layout, v); err == nil {
			return civil(t), true
		}
	}
	return time.Time{}, false
}

// ParseTime parses a record timestamp for ordering.
func ParseTime(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t, true
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", DateLayout, "01/02/2006"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseBound(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
