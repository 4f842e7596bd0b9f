package role

import "fmt"

// Role identifies a user's position in the procurement hierarchy
type Role string

const (
	RoleEmployee           Role = "employee"
	RoleManager            Role = "manager"
	RoleDirector           Role = "director"
	RoleProcurementOfficer Role = "procurement_officer"
	RoleAdmin              Role = "admin"
)

// authorityRanks is the fixed total order over roles. Director is not an
// actionable gate in the approval ladder; it ranks at manager tier so a
// director can act on manager-stage approvals.
var authorityRanks = map[Role]int{
	RoleEmployee:           1,
	RoleManager:            2,
	RoleDirector:           2,
	RoleProcurementOfficer: 3,
	RoleAdmin:              4,
}

// AuthorityRank returns the role's rank in the hierarchy, 0 for unknown roles
func (r Role) AuthorityRank() int {
	return authorityRanks[r]
}

// Subsumes returns true if the role carries at least the authority of required
func (r Role) Subsumes(required Role) bool {
	return r.AuthorityRank() >= required.AuthorityRank()
}

// IsValid returns true if the role is a known role
func (r Role) IsValid() bool {
	_, ok := authorityRanks[r]
	return ok
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Parse converts a string into a Role, rejecting unknown values
func Parse(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}
