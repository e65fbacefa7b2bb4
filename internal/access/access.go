// Package access maps the closed set of roles to the capabilities they grant.
package access

import (
	"github.com/nagarrakshak/caseledger/internal/errs"
	"github.com/nagarrakshak/caseledger/internal/model"
	"github.com/nagarrakshak/caseledger/internal/officername"
)

// Capability is a single permission bit.
type Capability uint16

const (
	ViewOwnCases Capability = 1 << iota
	ViewAllCases
	TransferCase
	DeleteCase
	ViewStats
	ManageOfficers
	ViewAudit
)

// Set is a bitmask of capabilities computed once per session.
type Set Capability

var roleCaps = map[model.Role]Set{
	model.RoleCitizen: 0,
	model.RoleOfficer: Set(ViewOwnCases),
	model.RoleAdmin: Set(ViewOwnCases | ViewAllCases | TransferCase | DeleteCase |
		ViewStats | ManageOfficers | ViewAudit),
}

// For returns the capability set of a role. Unknown roles get nothing.
func For(role model.Role) Set { return roleCaps[role] }

// Has reports whether all of the given capabilities are present.
func (s Set) Has(c Capability) bool { return Capability(s)&c == c }

// ParseRole converts a claim value into a known role.
func ParseRole(v string) (model.Role, bool) {
	r := model.Role(v)
	_, ok := roleCaps[r]
	return r, ok
}

// Principal is an authenticated caller with its precomputed capabilities.
type Principal struct {
	Identity model.Identity
	Caps     Set
}

// NewPrincipal derives the capability set for an identity.
func NewPrincipal(id model.Identity) Principal {
	return Principal{Identity: id, Caps: For(id.Role)}
}

// Can is shorthand for p.Caps.Has(c).
func (p Principal) Can(c Capability) bool { return p.Caps.Has(c) }

// CaseScope resolves which cases p may list when it asks for requested (empty = all).
// all is true when the unfiltered list is allowed; otherwise officer names the filter.
// Officers are always scoped to themselves and may not ask for anyone else.
func (p Principal) CaseScope(requested string) (officer string, all bool, err error) {
	switch {
	case p.Can(ViewAllCases):
		return requested, requested == "", nil
	case p.Can(ViewOwnCases):
		if requested != "" && !officername.Equal(requested, p.Identity.Name) {
			return "", false, errs.ErrForbidden
		}
		return p.Identity.Name, false, nil
	default:
		return "", false, errs.ErrForbidden
	}
}

// CanSeeCase reports whether p may read a case assigned to officer.
func (p Principal) CanSeeCase(officer string) bool {
	return p.Can(ViewAllCases) || (p.Can(ViewOwnCases) && officername.Equal(officer, p.Identity.Name))
}
