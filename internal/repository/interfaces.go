package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lexgestion/portal-api/internal/model"
)

// Sentinel errors shared by all repository implementations. ErrNotFound is
// an expected condition for the profile resolver, not an exceptional one.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// IdentityRepository stores identity-provider user records
type IdentityRepository interface {
	Create(ctx context.Context, identity *model.Identity, passwordHash string) error
	Get(ctx context.Context, id uuid.UUID) (*model.Identity, error)
	GetByEmail(ctx context.Context, email string) (*model.Identity, string, error)
}

// ProfileRepository stores durable user profiles keyed by identity id
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	Update(ctx context.Context, profile *model.Profile) error
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error
	List(ctx context.Context, filter *model.ProfileFilter) ([]*model.Profile, error)
}

// EmpresaRepository stores companies
type EmpresaRepository interface {
	Create(ctx context.Context, empresa *model.Empresa) error
	Get(ctx context.Context, id uuid.UUID) (*model.Empresa, error)
	List(ctx context.Context) ([]*model.Empresa, error)
	Update(ctx context.Context, empresa *model.Empresa) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CasoRepository stores cases, their assignments and the cascade delete.
// The List* methods return cases enriched with empresa, cliente and
// asignaciones, matching what the dashboards render.
type CasoRepository interface {
	Create(ctx context.Context, caso *model.Caso) error
	Get(ctx context.Context, id uuid.UUID) (*model.Caso, error)
	ListAll(ctx context.Context) ([]*model.Caso, error)
	ListByCliente(ctx context.Context, clienteID uuid.UUID) ([]*model.Caso, error)
	ListByAsignado(ctx context.Context, usuarioID uuid.UUID) ([]*model.Caso, error)
	UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error
	DeleteWithTareas(ctx context.Context, id uuid.UUID) error

	CreateAsignacion(ctx context.Context, asignacion *model.Asignacion) error
	DeleteAsignacion(ctx context.Context, casoID, usuarioID uuid.UUID) error
	HasAsignacion(ctx context.Context, casoID, usuarioID uuid.UUID) (bool, error)
}

// TareaRepository stores tasks
type TareaRepository interface {
	Create(ctx context.Context, tarea *model.Tarea) error
	Get(ctx context.Context, id uuid.UUID) (*model.Tarea, error)
	ListByAsignado(ctx context.Context, usuarioID uuid.UUID) ([]*model.Tarea, error)
	ListByCaso(ctx context.Context, casoID uuid.UUID) ([]*model.Tarea, error)
	UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error
}

// SolicitudRepository stores hour-budget requests
type SolicitudRepository interface {
	Create(ctx context.Context, solicitud *model.SolicitudHoras) error
	Get(ctx context.Context, id uuid.UUID) (*model.SolicitudHoras, error)
	ListAll(ctx context.Context) ([]*model.SolicitudHoras, error)
	ListBySolicitante(ctx context.Context, solicitanteID uuid.UUID) ([]*model.SolicitudHoras, error)
	UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error
}

// StatsRepository issues the independent dashboard counting queries
type StatsRepository interface {
	CountProfiles(ctx context.Context) (int, error)
	CountProfilesByRole(ctx context.Context, role model.Role) (int, error)
	CountEmpresas(ctx context.Context) (int, error)
	CountCasos(ctx context.Context) (int, error)
	CountCasosByEstado(ctx context.Context, estado string) (int, error)
	CountTareas(ctx context.Context) (int, error)
	CountTareasByEstado(ctx context.Context, estado string) (int, error)
	CountTareasPendientesDe(ctx context.Context, usuarioID uuid.UUID) (int, error)
}
