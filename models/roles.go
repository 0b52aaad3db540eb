package models

// Role is the closed set of account roles. Role checks go through this type
// rather than raw string comparison so an unknown role can never pass a gate.
type Role string

const (
	RoleUser       Role = "user"
	RoleContractor Role = "contractor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleContractor, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}
