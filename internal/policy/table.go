package policy

import "strings"

// Table classifies request paths: public pages reachable without a token,
// and protected prefixes restricted to a set of roles. Built once at
// process start, immutable afterwards.
//
// Prefix matching is longest-prefix-wins, so a nested entry like
// "/provider/earnings" beats "/provider" no matter the registration order.
type Table struct {
	public  []string
	entries []Entry
}

// Entry restricts a path prefix to a set of roles.
type Entry struct {
	Prefix string
	Roles  []Role
}

// Default is the route policy of the Tukangin web app.
func Default() *Table {
	return New(
		[]string{
			"/",
			LoginPath,
			RegisterPath,
			"/forgot-password",
			"/verify-otp",
			"/verify-email",
			"/about",
			"/services",
			"/faq",
		},
		[]Entry{
			{Prefix: "/admin", Roles: []Role{RoleAdmin}},
			{Prefix: "/provider", Roles: []Role{RoleProvider}},
			{Prefix: "/dashboard", Roles: []Role{RoleCustomer}},
			{Prefix: "/orders", Roles: []Role{RoleCustomer, RoleProvider}},
			{Prefix: "/chat", Roles: []Role{RoleCustomer, RoleProvider}},
		},
	)
}

func New(public []string, entries []Entry) *Table {
	return &Table{public: public, entries: entries}
}

// IsPublic reports whether path is reachable without a session.
// Exact match always counts; prefix match counts for every public entry
// except root, which would otherwise exempt everything.
func (t *Table) IsPublic(path string) bool {
	for _, p := range t.public {
		if path == p {
			return true
		}
		if p != "/" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// AllowedRoles returns the role set permitted on path, or nil when the
// path carries no restriction (any authenticated role passes).
// An exact entry wins outright; otherwise the longest matching prefix wins.
func (t *Table) AllowedRoles(path string) []Role {
	for _, e := range t.entries {
		if e.Prefix == path {
			return e.Roles
		}
	}

	var best *Entry
	for i := range t.entries {
		e := &t.entries[i]
		if !strings.HasPrefix(path, e.Prefix) {
			continue
		}
		if best == nil || len(e.Prefix) > len(best.Prefix) {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	return best.Roles
}

// Allows reports whether role may enter path under this table.
func (t *Table) Allows(path string, role Role) bool {
	roles := t.AllowedRoles(path)
	if roles == nil {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
