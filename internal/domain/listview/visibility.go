package listview

import "github.com/salesdesk/backend/internal/domain/identity"

// Rule grants the listed roles the records accepted by Allow.
type Rule struct {
	Roles []identity.Role
	Allow func(it Item, s identity.Session) bool
}

// Visibility is a priority chain of rules. The first rule naming the
// caller's role decides; a role no rule names sees nothing.
type Visibility struct {
	rules []Rule
}

// NewVisibility creates a chain evaluated in the given order.
func NewVisibility(rules ...Rule) *Visibility {
	return &Visibility{rules: rules}
}

// Predicate resolves the rule for s once and returns it as a filter.
func (v *Visibility) Predicate(s identity.Session) func(Item) bool {
	for _, r := range v.rules {
		if s.Role.Is(r.Roles...) {
			allow := r.Allow
			return func(it Item) bool { return allow(it, s) }
		}
	}
	return denyAll
}

// AllowAll accepts every record.
func AllowAll(Item, identity.Session) bool { return true }

// MatchesReference accepts records whose field equals the caller's own
// reference id. Callers without a reference id see nothing.
func MatchesReference(field string) func(Item, identity.Session) bool {
	return func(it Item, s identity.Session) bool {
		return s.ReferenceID != "" && it.Value(field) == s.ReferenceID
	}
}

// DefaultVisibility is the chain used by every module: administrators see
// everything, managers and territory managers see their teams, associates
// and staff see only what they own.
func DefaultVisibility(ownerField, managerField, tsmField string) *Visibility {
	return NewVisibility(
		Rule{Roles: []identity.Role{identity.RoleSuperAdmin, identity.RoleAdmin}, Allow: AllowAll},
		Rule{Roles: []identity.Role{identity.RoleManager}, Allow: MatchesReference(managerField)},
		Rule{Roles: []identity.Role{identity.RoleTerritorySalesManager}, Allow: MatchesReference(tsmField)},
		Rule{Roles: []identity.Role{identity.RoleTerritorySalesAssociate, identity.RoleStaff}, Allow: MatchesReference(ownerField)},
	)
}

func denyAll(Item) bool { return false }
