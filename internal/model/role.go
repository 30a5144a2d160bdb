package model

// Role is the closed set of portal roles. Anything outside the set is
// normalized to RolePending so an unrecognized role can never widen access.
type Role string

const (
	RolePending  Role = "pending"
	RoleCliente  Role = "cliente"
	RoleAnalista Role = "analista"
	RoleAbogado  Role = "abogado"
	RoleAdmin    Role = "admin"
)

// ParseRole maps a stored role string to a Role, falling back to RolePending
// for empty, null or unknown values.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleCliente, RoleAnalista, RoleAbogado, RoleAdmin, RolePending:
		return Role(s)
	default:
		return RolePending
	}
}

// Valid reports whether the role is a member of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RolePending, RoleCliente, RoleAnalista, RoleAbogado, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Asignacion roles: only professionals can be assigned to a case.
const (
	RolAsignadoAnalista = "analista"
	RolAsignadoAbogado  = "abogado"
)

// IsValidRolAsignado reports whether the given assignment role is allowed.
func IsValidRolAsignado(rol string) bool {
	return rol == RolAsignadoAnalista || rol == RolAsignadoAbogado
}
