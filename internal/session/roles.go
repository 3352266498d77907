package session

// Role is a realm role carried in the credential claims.
type Role string

const (
	RoleField           Role = "FIELD"
	RoleSupervisor      Role = "SUPERVISOR"
	RoleSuperSupervisor Role = "SUPER_SUPERVISOR"
)

// RoleSet is the set of roles granted to an identity.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet from raw claim values, ignoring roles the
// client does not model (Keycloak realms carry service roles too).
func NewRoleSet(raw []string) RoleSet {
	set := make(RoleSet, len(raw))
	for _, r := range raw {
		switch Role(r) {
		case RoleField, RoleSupervisor, RoleSuperSupervisor:
			set[Role(r)] = struct{}{}
		}
	}
	return set
}

// Has reports whether the set contains the given role.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}
