package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexgestion/portal-api/internal/model"
)

func TestLandingPath(t *testing.T) {
	tests := []struct {
		name string
		role model.Role
		want string
	}{
		{"admin", model.RoleAdmin, PathAdmin},
		{"analista", model.RoleAnalista, PathAnalista},
		{"abogado", model.RoleAbogado, PathAbogado},
		{"cliente", model.RoleCliente, PathCliente},
		{"pending", model.RolePending, PathPendiente},
		{"unknown role lands on pending, never broader", model.Role("superuser"), PathPendiente},
		{"empty role", model.Role(""), PathPendiente},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LandingPath(tt.role))
		})
	}
}

func TestAllowsPath(t *testing.T) {
	tests := []struct {
		name string
		role model.Role
		path string
		want bool
	}{
		{"admin on admin panel", model.RoleAdmin, PathAdmin, true},
		{"admin on admin sub-route", model.RoleAdmin, "/admin/usuarios", true},
		{"admin may open client panel", model.RoleAdmin, PathCliente, true},
		{"admin on professional panel", model.RoleAdmin, PathAnalista, true},
		{"cliente on own panel", model.RoleCliente, PathCliente, true},
		{"cliente on own sub-route", model.RoleCliente, "/cliente/casos/123", true},
		{"cliente on admin panel", model.RoleCliente, PathAdmin, false},
		{"analista on analista panel", model.RoleAnalista, PathAnalista, true},
		{"analista on abogado panel", model.RoleAnalista, PathAbogado, true},
		{"abogado on analista panel", model.RoleAbogado, PathAnalista, true},
		{"analista on client panel", model.RoleAnalista, PathCliente, false},
		{"pending only on pendiente", model.RolePending, PathPendiente, true},
		{"pending on client panel", model.RolePending, PathCliente, false},
		{"anyone on pendiente", model.RoleAdmin, PathPendiente, true},
		{"unknown route", model.RoleAdmin, "/otra-cosa", false},
		{"unknown role on admin", model.Role("superuser"), PathAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowsPath(tt.role, tt.path))
		})
	}
}

func TestCapabilityPredicates(t *testing.T) {
	assert.True(t, IsAdmin(model.RoleAdmin))
	assert.False(t, IsAdmin(model.RoleAbogado))

	assert.True(t, IsProfessional(model.RoleAnalista))
	assert.True(t, IsProfessional(model.RoleAbogado))
	assert.True(t, IsProfessional(model.RoleAdmin))
	assert.False(t, IsProfessional(model.RoleCliente))
	assert.False(t, IsProfessional(model.RolePending))

	assert.True(t, CanAccessClientPanel(model.RoleCliente))
	assert.True(t, CanAccessClientPanel(model.RoleAdmin))
	assert.False(t, CanAccessClientPanel(model.RoleAnalista))
}
