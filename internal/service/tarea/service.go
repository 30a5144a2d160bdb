package tarea

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
	casoservice "github.com/lexgestion/portal-api/internal/service/caso"
	apperrors "github.com/lexgestion/portal-api/pkg/errors"
	"github.com/lexgestion/portal-api/pkg/logger"
)

// Service owns task reads and mutations. Mutations are gated on the actor:
// the assignee, a professional on the parent case, or an admin.
type Service struct {
	repo   repository.TareaRepository
	casos  *casoservice.Service
	logger *logger.Logger
}

func NewService(repo repository.TareaRepository, casos *casoservice.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		casos:  casos,
		logger: logger,
	}
}

// AssignedTo returns all tasks assigned to the user, enriched with the
// parent case title. No tasks is an empty list.
func (s *Service) AssignedTo(ctx context.Context, userID uuid.UUID) ([]*model.Tarea, error) {
	tareas, err := s.repo.ListByAsignado(ctx, userID)
	if err != nil {
		s.logger.Error(err, "failed to list tareas", "user_id", userID)
		return nil, apperrors.Unavailable(err)
	}
	if tareas == nil {
		tareas = []*model.Tarea{}
	}
	return tareas, nil
}

// ListByCaso returns a case's tasks for an actor that may see the case
func (s *Service) ListByCaso(ctx context.Context, actor *model.Profile, casoID uuid.UUID) ([]*model.Tarea, error) {
	allowed, err := s.casos.CanActOn(ctx, actor, casoID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.Forbidden("caso is not visible for this user", nil)
	}

	tareas, err := s.repo.ListByCaso(ctx, casoID)
	if err != nil {
		return nil, apperrors.Unavailable(err)
	}
	if tareas == nil {
		tareas = []*model.Tarea{}
	}
	return tareas, nil
}

// Create inserts a pending task on a case visible to the actor
func (s *Service) Create(ctx context.Context, actor *model.Profile, casoID uuid.UUID, req *model.CreateTareaRequest) (*model.Tarea, error) {
	allowed, err := s.casos.CanActOn(ctx, actor, casoID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.Forbidden("caso is not visible for this user", nil)
	}

	asignadoA, err := uuid.Parse(req.AsignadoA)
	if err != nil {
		return nil, apperrors.BadRequest("invalid asignado_a", err)
	}

	tarea := &model.Tarea{
		CasoID:      casoID,
		AsignadoA:   asignadoA,
		Titulo:      req.Titulo,
		Descripcion: req.Descripcion,
		Estado:      model.EstadoTareaPendiente,
	}

	if err := s.repo.Create(ctx, tarea); err != nil {
		s.logger.Error(err, "failed to create tarea", "caso_id", casoID)
		return nil, apperrors.Unavailable(err)
	}

	return tarea, nil
}

// SetEstado overwrites the task status. Transitions are deliberately
// unconstrained (a completed task may go back to pending); only the target
// value itself is validated. Tightening this would need a migration story
// for the existing flows that bounce statuses.
func (s *Service) SetEstado(ctx context.Context, actor *model.Profile, id uuid.UUID, estado string) error {
	if !model.IsValidEstadoTarea(estado) {
		return apperrors.BadRequest(fmt.Sprintf("invalid estado %q", estado), nil)
	}

	tarea, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("tarea", err)
		}
		return apperrors.Unavailable(err)
	}

	allowed, err := s.canMutate(ctx, actor, tarea)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.Forbidden("tarea is not editable for this user", nil)
	}

	if err := s.repo.UpdateEstado(ctx, id, estado); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("tarea", err)
		}
		s.logger.Error(err, "failed to update tarea estado", "tarea_id", id)
		return apperrors.Unavailable(err)
	}
	return nil
}

func (s *Service) canMutate(ctx context.Context, actor *model.Profile, tarea *model.Tarea) (bool, error) {
	if actor == nil {
		return false, nil
	}
	if model.ParseRole(string(actor.Role)) == model.RoleAdmin {
		return true, nil
	}
	if tarea.AsignadoA == actor.ID {
		return true, nil
	}
	// Beyond the assignee and admins, only the case's professionals may
	// move a task; the owning client reads but does not mutate.
	switch model.ParseRole(string(actor.Role)) {
	case model.RoleAnalista, model.RoleAbogado:
		return s.casos.CanActOn(ctx, actor, tarea.CasoID)
	default:
		return false, nil
	}
}
