package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
	"github.com/lexgestion/portal-api/pkg/auth"
	"github.com/lexgestion/portal-api/pkg/logger"
	"github.com/lexgestion/portal-api/pkg/messaging"
)

var (
	ErrNoSession          = errors.New("no active session")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

const bcryptCost = 12

// Service implements Provider on top of the identities table and JWTs.
// Every state change is published on the auth channel so subscribers
// (session manager, provisioner worker) observe it.
type Service struct {
	repo        repository.IdentityRepository
	jwtSvc      auth.JWTService
	broker      messaging.Broker
	tokenExpiry time.Duration
	logger      *logger.Logger
}

func NewService(repo repository.IdentityRepository, jwtSvc auth.JWTService,
	broker messaging.Broker, tokenExpiry time.Duration, logger *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		jwtSvc:      jwtSvc,
		broker:      broker,
		tokenExpiry: tokenExpiry,
		logger:      logger,
	}
}

func (s *Service) GetSession(ctx context.Context, accessToken string) (*model.Session, error) {
	if accessToken == "" {
		return nil, ErrNoSession
	}

	claims, err := s.jwtSvc.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	identity, err := s.repo.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}

	return &model.Session{
		Identity:    identity,
		AccessToken: accessToken,
	}, nil
}

func (s *Service) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	metadata := model.JSONMap{}
	if req.FullName != "" {
		metadata["full_name"] = req.FullName
	}

	identity := &model.Identity{
		ID:       uuid.New(),
		Email:    req.Email,
		Metadata: metadata,
	}

	if err := s.repo.Create(ctx, identity, string(hash)); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	session, err := s.issueSession(identity)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, AuthEvent{
		Type:     EventSignedUp,
		UserID:   identity.ID,
		Email:    identity.Email,
		Metadata: identity.Metadata,
	})

	return session, nil
}

func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error) {
	identity, hash, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session, err := s.issueSession(identity)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, AuthEvent{
		Type:   EventSignedIn,
		UserID: identity.ID,
		Email:  identity.Email,
	})

	return session, nil
}

func (s *Service) SignOut(ctx context.Context, userID uuid.UUID) error {
	s.publish(ctx, AuthEvent{
		Type:   EventSignedOut,
		UserID: userID,
	})
	return nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwtSvc.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	identity, err := s.repo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}

	session, err := s.issueSession(identity)
	if err != nil {
		return nil, err
	}

	return &model.TokenResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    session.ExpiresAt,
	}, nil
}

func (s *Service) OnAuthStateChange(ctx context.Context, fn func(AuthEvent)) error {
	msgs, err := s.broker.Subscribe(ctx, Channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe to auth events: %w", err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case payload, ok := <-msgs:
				if !ok {
					return
				}
				var event AuthEvent
				if err := json.Unmarshal(payload, &event); err != nil {
					s.logger.Warn(err, "discarding malformed auth event")
					continue
				}
				fn(event)
			}
		}
	}()

	return nil
}

func (s *Service) issueSession(identity *model.Identity) (*model.Session, error) {
	accessToken, err := s.jwtSvc.GenerateAccessToken(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtSvc.GenerateRefreshToken(identity)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &model.Session{
		Identity:     identity,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().Add(s.tokenExpiry),
	}, nil
}

// publish is best effort: a broker outage must not fail the auth flow, the
// resolver's provisioning fallback covers the missed event.
func (s *Service) publish(ctx context.Context, event AuthEvent) {
	if err := s.broker.Publish(ctx, Channel, event); err != nil {
		s.logger.Warn(err, "failed to publish auth event", "type", event.Type)
	}
}
