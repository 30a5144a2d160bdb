package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JSONMap represents a generic JSON object stored in a jsonb column
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported type %T for JSONMap", src)
	}
	return json.Unmarshal(b, m)
}

// Identity is the identity-provider user record. It carries no role; the
// role lives on the Profile resolved from it.
type Identity struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Metadata  JSONMap   `json:"metadata" db:"metadata"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FullNameFromMetadata returns the display name carried in sign-up metadata,
// or empty when absent.
func (i *Identity) FullNameFromMetadata() string {
	if i.Metadata == nil {
		return ""
	}
	if name, ok := i.Metadata["full_name"].(string); ok {
		return name
	}
	return ""
}

// Session is an authenticated identity plus its tokens
type Session struct {
	Identity     *Identity `json:"identity"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// TokenClaims are the validated contents of an access token
type TokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// TokenResponse is returned by login/refresh
type TokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// SignUpRequest represents registration parameters
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"omitempty,max=200"`
}

// LoginRequest represents password sign-in parameters
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
