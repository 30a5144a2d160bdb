package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Case status constants
const (
	EstadoCasoActivo  = "activo"
	EstadoCasoCerrado = "cerrado"
)

// IsValidEstadoCaso reports whether the status is a member of the closed set.
func IsValidEstadoCaso(estado string) bool {
	return estado == EstadoCasoActivo || estado == EstadoCasoCerrado
}

// Caso is a legal case linked to a company and a client profile. The joined
// fields are populated by the read paths; mutations only touch the columns.
type Caso struct {
	ID        uuid.UUID `json:"id" db:"id"`
	EmpresaID uuid.UUID `json:"empresa_id" db:"empresa_id"`
	ClienteID uuid.UUID `json:"cliente_id" db:"cliente_id"`
	Titulo    string    `json:"titulo" db:"titulo"`
	Estado    string    `json:"estado" db:"estado"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Empresa      *Empresa      `json:"empresa,omitempty" db:"-"`
	Cliente      *Profile      `json:"cliente,omitempty" db:"-"`
	Asignaciones []*Asignacion `json:"asignaciones" db:"-"`
}

// Asignacion grants a professional visibility and work rights over a case
type Asignacion struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CasoID      uuid.UUID `json:"caso_id" db:"caso_id"`
	UsuarioID   uuid.UUID `json:"usuario_id" db:"usuario_id"`
	RolAsignado string    `json:"rol_asignado" db:"rol_asignado"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	Usuario *Profile `json:"usuario,omitempty" db:"-"`
}

// CreateCasoRequest represents case creation parameters. An optional hour
// budget opens an initial solicitud de horas alongside the case.
type CreateCasoRequest struct {
	EmpresaID           string           `json:"empresa_id" binding:"required,uuid"`
	ClienteID           string           `json:"cliente_id" binding:"required,uuid"`
	Titulo              string           `json:"titulo" binding:"required,min=1,max=300"`
	HorasPresupuestadas *decimal.Decimal `json:"horas_presupuestadas"`
}

// UpdateEstadoRequest is a direct status overwrite for cases and tasks
type UpdateEstadoRequest struct {
	Estado string `json:"estado" binding:"required"`
}

// CreateAsignacionRequest assigns a professional to a case
type CreateAsignacionRequest struct {
	UsuarioID   string `json:"usuario_id" binding:"required,uuid"`
	RolAsignado string `json:"rol_asignado" binding:"required,oneof=analista abogado"`
}
