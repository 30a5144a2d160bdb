package model

import (
	"time"

	"github.com/google/uuid"
)

// Task status constants
const (
	EstadoTareaPendiente  = "pendiente"
	EstadoTareaEnProgreso = "en_progreso"
	EstadoTareaCompletada = "completada"
)

// IsValidEstadoTarea reports whether the status is a member of the closed set.
func IsValidEstadoTarea(estado string) bool {
	switch estado {
	case EstadoTareaPendiente, EstadoTareaEnProgreso, EstadoTareaCompletada:
		return true
	}
	return false
}

// Tarea is a task on a case, assigned to a profile. CasoTitulo is populated
// by the read paths joining the parent case.
type Tarea struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CasoID      uuid.UUID `json:"caso_id" db:"caso_id"`
	AsignadoA   uuid.UUID `json:"asignado_a" db:"asignado_a"`
	Titulo      string    `json:"titulo" db:"titulo"`
	Descripcion *string   `json:"descripcion,omitempty" db:"descripcion"`
	Estado      string    `json:"estado" db:"estado"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	CasoTitulo string `json:"caso_titulo,omitempty" db:"caso_titulo"`
}

// CreateTareaRequest represents task creation parameters
type CreateTareaRequest struct {
	AsignadoA   string  `json:"asignado_a" binding:"required,uuid"`
	Titulo      string  `json:"titulo" binding:"required,min=1,max=300"`
	Descripcion *string `json:"descripcion" binding:"omitempty,max=2000"`
}
