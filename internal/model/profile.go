package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the durable per-user record, keyed by the identity id.
// Exactly one profile exists per identity; it is provisioned lazily on the
// first successful authentication when the backing row is missing.
type Profile struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Ephemeral marks a degraded in-memory profile built when the store was
	// unreachable. It is never written back.
	Ephemeral bool `json:"-" db:"-"`
}

// ProfileFilter represents profile search parameters
type ProfileFilter struct {
	Role       string `json:"role" form:"rol"`
	SearchTerm string `json:"search_term" form:"q"`
}

// UpdateProfileRequest covers the fields a user may change on their own
// profile. Role is excluded; only an admin can move it.
type UpdateProfileRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,min=1,max=200"`
}

// UpdateRoleRequest is the admin-only role mutation
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=pending cliente analista abogado admin"`
}
