package auth

import (
	"strings"

	"github.com/spec-kit/accounts-service/internal/domain"
)

// Policy is a named set of roles allowed through a gate.
type Policy struct {
	name  string
	roles map[domain.Role]struct{}
}

// Predefined policies.
var (
	AdminOnly     = NewPolicy("admin-only", domain.RoleAdmin)
	EditorOrAdmin = NewPolicy("editor-or-admin", domain.RoleEditor, domain.RoleAdmin)
)

// NewPolicy builds a policy admitting the given roles.
func NewPolicy(name string, allowed ...domain.Role) Policy {
	roles := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		roles[role] = struct{}{}
	}
	return Policy{name: name, roles: roles}
}

// Name identifies the policy in logs.
func (p Policy) Name() string {
	return p.name
}

// Allows reports whether the principal's role is in the policy, or the principal is an
// administrator (Role ADMIN or the legacy IsAdmin flag).
func (p Policy) Allows(principal *domain.User) bool {
	if principal == nil {
		return false
	}
	if principal.IsAdministrator() {
		return true
	}
	_, ok := p.roles[principal.Role]
	return ok
}

func (p Policy) String() string {
	names := make([]string, 0, len(p.roles))
	for _, role := range []domain.Role{domain.RoleViewer, domain.RoleEditor, domain.RoleAdmin} {
		if _, ok := p.roles[role]; ok {
			names = append(names, string(role))
		}
	}
	return p.name + "{" + strings.Join(names, ",") + "}"
}
