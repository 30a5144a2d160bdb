package model

import (
	"time"

	"github.com/google/uuid"
)

// Empresa is an admin-managed company referenced by cases
type Empresa struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Nombre    string    `json:"nombre" db:"nombre"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateEmpresaRequest represents company creation parameters
type CreateEmpresaRequest struct {
	Nombre string `json:"nombre" binding:"required,min=1,max=200"`
}

// UpdateEmpresaRequest represents company update parameters
type UpdateEmpresaRequest struct {
	Nombre string `json:"nombre" binding:"required,min=1,max=200"`
}
