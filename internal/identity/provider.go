package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/lexgestion/portal-api/internal/model"
)

// Auth event types published on the auth channel
const (
	EventSignedUp  = "signed_up"
	EventSignedIn  = "signed_in"
	EventSignedOut = "signed_out"
)

// Channel is the broker channel carrying auth-state changes
const Channel = "auth.events"

// AuthEvent is the auth-state-change notification. The provisioner worker
// consumes signed_up events to create the default profile row.
type AuthEvent struct {
	Type     string        `json:"type"`
	UserID   uuid.UUID     `json:"user_id"`
	Email    string        `json:"email"`
	Metadata model.JSONMap `json:"metadata,omitempty"`
}

// Provider is the identity/session surface the rest of the portal consumes.
type Provider interface {
	// GetSession validates an access token and returns the identity behind
	// it, or ErrNoSession when the token is absent/invalid.
	GetSession(ctx context.Context, accessToken string) (*model.Session, error)
	SignUp(ctx context.Context, req *model.SignUpRequest) (*model.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error)
	SignOut(ctx context.Context, userID uuid.UUID) error
	Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error)

	// OnAuthStateChange delivers auth events to fn until ctx is cancelled.
	OnAuthStateChange(ctx context.Context, fn func(AuthEvent)) error
}
