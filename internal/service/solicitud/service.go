package solicitud

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
	casoservice "github.com/lexgestion/portal-api/internal/service/caso"
	apperrors "github.com/lexgestion/portal-api/pkg/errors"
	"github.com/lexgestion/portal-api/pkg/logger"
)

// Service owns hour-budget requests: professionals raise them on a case
// they work, admins decide them.
type Service struct {
	repo   repository.SolicitudRepository
	casos  *casoservice.Service
	logger *logger.Logger
}

func NewService(repo repository.SolicitudRepository, casos *casoservice.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		casos:  casos,
		logger: logger,
	}
}

// Create raises a pending request against a case visible to the actor
func (s *Service) Create(ctx context.Context, actor *model.Profile, casoID uuid.UUID, req *model.CreateSolicitudRequest) (*model.SolicitudHoras, error) {
	if req.Horas.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.BadRequest("horas must be positive", nil)
	}

	allowed, err := s.casos.CanActOn(ctx, actor, casoID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.Forbidden("caso is not visible for this user", nil)
	}

	solicitud := &model.SolicitudHoras{
		CasoID:        casoID,
		SolicitanteID: actor.ID,
		Horas:         req.Horas,
		Motivo:        req.Motivo,
		Estado:        model.EstadoSolicitudPendiente,
	}

	if err := s.repo.Create(ctx, solicitud); err != nil {
		s.logger.Error(err, "failed to create solicitud", "caso_id", casoID)
		return nil, apperrors.Unavailable(err)
	}

	return solicitud, nil
}

// VisibleTo lists requests: admins see all, everyone else their own
func (s *Service) VisibleTo(ctx context.Context, p *model.Profile) ([]*model.SolicitudHoras, error) {
	var (
		solicitudes []*model.SolicitudHoras
		err         error
	)

	if model.ParseRole(string(p.Role)) == model.RoleAdmin {
		solicitudes, err = s.repo.ListAll(ctx)
	} else {
		solicitudes, err = s.repo.ListBySolicitante(ctx, p.ID)
	}

	if err != nil {
		s.logger.Error(err, "failed to list solicitudes", "user_id", p.ID)
		return nil, apperrors.Unavailable(err)
	}
	if solicitudes == nil {
		solicitudes = []*model.SolicitudHoras{}
	}
	return solicitudes, nil
}

// Decide moves a pending request to aprobada or rechazada. Decided
// requests stay decided.
func (s *Service) Decide(ctx context.Context, id uuid.UUID, estado string) error {
	if estado != model.EstadoSolicitudAprobada && estado != model.EstadoSolicitudRechazada {
		return apperrors.BadRequest(fmt.Sprintf("invalid estado %q", estado), nil)
	}

	solicitud, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("solicitud", err)
		}
		return apperrors.Unavailable(err)
	}

	if solicitud.Estado != model.EstadoSolicitudPendiente {
		return apperrors.Conflict("solicitud already decided", nil)
	}

	if err := s.repo.UpdateEstado(ctx, id, estado); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("solicitud", err)
		}
		s.logger.Error(err, "failed to update solicitud estado", "solicitud_id", id)
		return apperrors.Unavailable(err)
	}
	return nil
}
