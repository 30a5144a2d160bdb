// Package access holds the pure role-to-capability mapping. Nothing here
// touches the store or the session; every screen and mutation gate goes
// through these predicates so the rules live in exactly one place.
package access

import (
	"strings"

	"github.com/lexgestion/portal-api/internal/model"
)

// Canonical landing paths per role
const (
	PathAdmin     = "/admin"
	PathAnalista  = "/analista"
	PathAbogado   = "/abogado"
	PathCliente   = "/cliente"
	PathPendiente = "/pendiente"
	PathLogin     = "/login"
)

// IsAdmin reports whether the role grants the admin panel
func IsAdmin(role model.Role) bool {
	return model.ParseRole(string(role)) == model.RoleAdmin
}

// IsProfessional covers analyst and lawyer work surfaces; admin overrides.
func IsProfessional(role model.Role) bool {
	switch model.ParseRole(string(role)) {
	case model.RoleAnalista, model.RoleAbogado, model.RoleAdmin:
		return true
	}
	return false
}

// IsClientFacing reports whether the role sees the client dashboard
func IsClientFacing(role model.Role) bool {
	return model.ParseRole(string(role)) == model.RoleCliente
}

func CanAccessAdminPanel(role model.Role) bool {
	return IsAdmin(role)
}

func CanAccessProfessionalPanel(role model.Role) bool {
	return IsProfessional(role)
}

// CanAccessClientPanel allows the client plus the admin override
func CanAccessClientPanel(role model.Role) bool {
	r := model.ParseRole(string(role))
	return r == model.RoleCliente || r == model.RoleAdmin
}

// LandingPath is the canonical route a user lands on after resolution.
// Unknown and pending roles both land on the pending-approval screen;
// an unrecognized role must never land anywhere broader.
func LandingPath(role model.Role) string {
	switch model.ParseRole(string(role)) {
	case model.RoleAdmin:
		return PathAdmin
	case model.RoleAnalista:
		return PathAnalista
	case model.RoleAbogado:
		return PathAbogado
	case model.RoleCliente:
		return PathCliente
	default:
		return PathPendiente
	}
}

// AllowsPath reports whether the role may stay on the given route. A user
// already on a valid sub-route for their role is not redirected, which is
// what breaks redirect loops.
func AllowsPath(role model.Role, path string) bool {
	switch {
	case strings.HasPrefix(path, PathAdmin):
		return CanAccessAdminPanel(role)
	case strings.HasPrefix(path, PathAnalista), strings.HasPrefix(path, PathAbogado):
		return CanAccessProfessionalPanel(role)
	case strings.HasPrefix(path, PathCliente):
		return CanAccessClientPanel(role)
	case strings.HasPrefix(path, PathPendiente):
		return true
	default:
		return false
	}
}
