package usuario

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lexgestion/portal-api/internal/email"
	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
	"github.com/lexgestion/portal-api/internal/session"
	apperrors "github.com/lexgestion/portal-api/pkg/errors"
	"github.com/lexgestion/portal-api/pkg/logger"
)

// Service is the admin-facing user management: listing profiles and
// moving roles.
type Service struct {
	repo     repository.ProfileRepository
	emailSvc email.Service
	sessions *session.Manager
	logger   *logger.Logger
}

func NewService(repo repository.ProfileRepository, emailSvc email.Service,
	sessions *session.Manager, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		emailSvc: emailSvc,
		sessions: sessions,
		logger:   logger,
	}
}

func (s *Service) List(ctx context.Context, filter *model.ProfileFilter) ([]*model.Profile, error) {
	profiles, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error(err, "failed to list profiles")
		return nil, apperrors.Unavailable(err)
	}
	if profiles == nil {
		profiles = []*model.Profile{}
	}
	return profiles, nil
}

// ChangeRole moves a user's role. The change is deliberately not pushed
// into any live session; it takes effect on the user's next resolution.
// Leaving pending triggers the approval email.
func (s *Service) ChangeRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.Profile, error) {
	if !role.Valid() {
		return nil, apperrors.BadRequest("invalid role", nil)
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("profile", err)
		}
		return nil, apperrors.Unavailable(err)
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("profile", err)
		}
		s.logger.Error(err, "failed to update role", "user_id", id)
		return nil, apperrors.Unavailable(err)
	}

	if current.Role == model.RolePending && role != model.RolePending {
		if err := s.emailSvc.SendRoleApproved(ctx, current.Email, current.FullName, string(role)); err != nil {
			s.logger.Warn(err, "approval email failed", "user_id", id)
		}
	}

	current.Role = role
	return current, nil
}

// UpdateOwn lets a user edit their own non-role fields. The edit is built
// on a copy; the caller's profile and its session store entry only change
// once the row is persisted.
func (s *Service) UpdateOwn(ctx context.Context, p *model.Profile, req *model.UpdateProfileRequest) (*model.Profile, error) {
	updated := *p
	if req.FullName != nil {
		updated.FullName = *req.FullName
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("profile", err)
		}
		s.logger.Error(err, "failed to update profile", "user_id", p.ID)
		return nil, apperrors.Unavailable(err)
	}

	s.sessions.For(updated.ID).SetProfile(&updated)
	return &updated, nil
}
