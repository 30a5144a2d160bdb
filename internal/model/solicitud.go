package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Hour-budget request status constants
const (
	EstadoSolicitudPendiente = "pendiente"
	EstadoSolicitudAprobada  = "aprobada"
	EstadoSolicitudRechazada = "rechazada"
)

// IsValidEstadoSolicitud reports whether the status is a member of the closed set.
func IsValidEstadoSolicitud(estado string) bool {
	switch estado {
	case EstadoSolicitudPendiente, EstadoSolicitudAprobada, EstadoSolicitudRechazada:
		return true
	}
	return false
}

// SolicitudHoras is an hour-budget request raised against a case by a
// professional and decided by an admin.
type SolicitudHoras struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	CasoID        uuid.UUID       `json:"caso_id" db:"caso_id"`
	SolicitanteID uuid.UUID       `json:"solicitante_id" db:"solicitante_id"`
	Horas         decimal.Decimal `json:"horas" db:"horas"`
	Motivo        string          `json:"motivo" db:"motivo"`
	Estado        string          `json:"estado" db:"estado"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`

	CasoTitulo string `json:"caso_titulo,omitempty" db:"caso_titulo"`
}

// CreateSolicitudRequest represents hour-budget request parameters
type CreateSolicitudRequest struct {
	Horas  decimal.Decimal `json:"horas" binding:"required"`
	Motivo string          `json:"motivo" binding:"required,min=1,max=1000"`
}

// UpdateSolicitudEstadoRequest is the admin decision on a request
type UpdateSolicitudEstadoRequest struct {
	Estado string `json:"estado" binding:"required,oneof=aprobada rechazada"`
}
