package record

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

// ReferenceTemplate says where a module's reference code comes from and
// where it is stored.
type ReferenceTemplate struct {
	NameField string `json:"name_field"`
	IDField   string `json:"id_field"`
	Target    string `json:"target"`
}

// ReferenceGenerator builds human-readable reference codes of the form
// N-II-DDMM-NNNNNN: first letter of the name, first two characters of the
// id, day and month of creation, six random digits.
type ReferenceGenerator struct {
	now func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// ReferenceOption configures a ReferenceGenerator
type ReferenceOption func(*ReferenceGenerator)

// WithClock sets the clock used for the DDMM segment.
func WithClock(now func() time.Time) ReferenceOption {
	return func(g *ReferenceGenerator) {
		g.now = now
	}
}

// WithRand sets the source of the random suffix.
func WithRand(r *rand.Rand) ReferenceOption {
	return func(g *ReferenceGenerator) {
		g.rnd = r
	}
}

// NewReferenceGenerator creates a generator using the wall clock and the
// global random source unless overridden.
func NewReferenceGenerator(opts ...ReferenceOption) *ReferenceGenerator {
	g := &ReferenceGenerator{now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns a code for name and id. Missing fragments are padded
// with 'X' so the code keeps its shape.
func (g *ReferenceGenerator) Generate(name, id string) string {
	initial := "X"
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name)); r != utf8.RuneError {
		initial = string(unicode.ToUpper(r))
	}

	prefix := []rune(strings.ToUpper(strings.TrimSpace(id)))
	for len(prefix) < 2 {
		prefix = append(prefix, 'X')
	}

	return fmt.Sprintf("%s-%s-%s-%06d", initial, string(prefix[:2]), g.now().Format("0201"), g.suffix())
}

// Assign generates the code for fields and stores it under the template's
// target. Codes already present are kept.
func (g *ReferenceGenerator) Assign(t *ReferenceTemplate, fields Fields) string {
	if existing := strings.TrimSpace(fields.String(t.Target)); existing != "" {
		return existing
	}
	code := g.Generate(fields.String(t.NameField), fields.String(t.IDField))
	fields[t.Target] = code
	return code
}

func (g *ReferenceGenerator) suffix() int {
	if g.rnd == nil {
		return rand.IntN(1_000_000)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.IntN(1_000_000)
}
