package caso

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
	apperrors "github.com/lexgestion/portal-api/pkg/errors"
	"github.com/lexgestion/portal-api/pkg/logger"
)

// Service owns the role-scoped case read paths and the case mutations.
type Service struct {
	repo        repository.CasoRepository
	solicitudes repository.SolicitudRepository
	logger      *logger.Logger
}

func NewService(repo repository.CasoRepository, solicitudes repository.SolicitudRepository, logger *logger.Logger) *Service {
	return &Service{
		repo:        repo,
		solicitudes: solicitudes,
		logger:      logger,
	}
}

// CasesVisibleTo returns the cases the profile may see: a client sees the
// cases they own, a professional the ones assigned to them (none assigned
// is an empty list, not an error), an admin all of them. Pending and
// unknown roles see nothing.
func (s *Service) CasesVisibleTo(ctx context.Context, p *model.Profile) ([]*model.Caso, error) {
	if p == nil {
		return []*model.Caso{}, nil
	}

	var (
		casos []*model.Caso
		err   error
	)

	switch model.ParseRole(string(p.Role)) {
	case model.RoleAdmin:
		casos, err = s.repo.ListAll(ctx)
	case model.RoleCliente:
		casos, err = s.repo.ListByCliente(ctx, p.ID)
	case model.RoleAnalista, model.RoleAbogado:
		casos, err = s.repo.ListByAsignado(ctx, p.ID)
	default:
		return []*model.Caso{}, nil
	}

	if err != nil {
		s.logger.Error(err, "failed to list casos", "user_id", p.ID, "role", p.Role)
		return nil, apperrors.Unavailable(err)
	}
	if casos == nil {
		casos = []*model.Caso{}
	}
	return casos, nil
}

// Get returns a single case if the profile may see it
func (s *Service) Get(ctx context.Context, p *model.Profile, id uuid.UUID) (*model.Caso, error) {
	caso, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("caso", err)
		}
		return nil, apperrors.Unavailable(err)
	}

	visible, err := s.canSee(ctx, p, caso)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, apperrors.Forbidden("caso is not visible for this user", nil)
	}
	return caso, nil
}

// Create inserts a new active case. An optional hour budget opens an
// initial solicitud de horas in the same breath; a failure there is
// reported but does not roll back the case.
func (s *Service) Create(ctx context.Context, actor *model.Profile, req *model.CreateCasoRequest) (*model.Caso, error) {
	empresaID, err := uuid.Parse(req.EmpresaID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid empresa id", err)
	}
	clienteID, err := uuid.Parse(req.ClienteID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid cliente id", err)
	}

	caso := &model.Caso{
		EmpresaID: empresaID,
		ClienteID: clienteID,
		Titulo:    req.Titulo,
		Estado:    model.EstadoCasoActivo,
	}

	if err := s.repo.Create(ctx, caso); err != nil {
		s.logger.Error(err, "failed to create caso")
		return nil, apperrors.Unavailable(err)
	}

	if req.HorasPresupuestadas != nil && req.HorasPresupuestadas.GreaterThan(decimal.Zero) {
		solicitud := &model.SolicitudHoras{
			CasoID:        caso.ID,
			SolicitanteID: actor.ID,
			Horas:         *req.HorasPresupuestadas,
			Motivo:        "presupuesto inicial",
			Estado:        model.EstadoSolicitudPendiente,
		}
		if err := s.solicitudes.Create(ctx, solicitud); err != nil {
			s.logger.Warn(err, "initial hour-budget request failed", "caso_id", caso.ID)
		}
	}

	return caso, nil
}

// SetEstado overwrites the case status. Any status may follow any other;
// the transitions were never constrained in the product and tightening
// them silently would strand reopened cases, so the permissiveness is kept
// on purpose.
func (s *Service) SetEstado(ctx context.Context, id uuid.UUID, estado string) error {
	if !model.IsValidEstadoCaso(estado) {
		return apperrors.BadRequest(fmt.Sprintf("invalid estado %q", estado), nil)
	}

	if err := s.repo.UpdateEstado(ctx, id, estado); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("caso", err)
		}
		s.logger.Error(err, "failed to update caso estado", "caso_id", id)
		return apperrors.Unavailable(err)
	}
	return nil
}

// Delete removes the case and its dependent rows atomically. The store
// does not cascade, so dependents go first inside one transaction.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteWithTareas(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("caso", err)
		}
		s.logger.Error(err, "failed to delete caso", "caso_id", id)
		return apperrors.Unavailable(err)
	}
	return nil
}

// Assign grants a professional visibility over a case
func (s *Service) Assign(ctx context.Context, casoID uuid.UUID, req *model.CreateAsignacionRequest) (*model.Asignacion, error) {
	usuarioID, err := uuid.Parse(req.UsuarioID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid usuario id", err)
	}
	if !model.IsValidRolAsignado(req.RolAsignado) {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid rol_asignado %q", req.RolAsignado), nil)
	}

	asignacion := &model.Asignacion{
		CasoID:      casoID,
		UsuarioID:   usuarioID,
		RolAsignado: req.RolAsignado,
	}

	if err := s.repo.CreateAsignacion(ctx, asignacion); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperrors.Conflict("usuario already assigned to caso", err)
		}
		s.logger.Error(err, "failed to create asignacion", "caso_id", casoID)
		return nil, apperrors.Unavailable(err)
	}

	return asignacion, nil
}

// Unassign revokes a professional's assignment
func (s *Service) Unassign(ctx context.Context, casoID, usuarioID uuid.UUID) error {
	if err := s.repo.DeleteAsignacion(ctx, casoID, usuarioID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("asignacion", err)
		}
		s.logger.Error(err, "failed to delete asignacion", "caso_id", casoID)
		return apperrors.Unavailable(err)
	}
	return nil
}

// CanActOn reports whether the profile may work on the case: the owning
// client, an assigned professional, or an admin.
func (s *Service) CanActOn(ctx context.Context, p *model.Profile, casoID uuid.UUID) (bool, error) {
	caso, err := s.repo.Get(ctx, casoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, apperrors.NotFound("caso", err)
		}
		return false, apperrors.Unavailable(err)
	}
	return s.canSee(ctx, p, caso)
}

func (s *Service) canSee(ctx context.Context, p *model.Profile, caso *model.Caso) (bool, error) {
	if p == nil {
		return false, nil
	}

	switch model.ParseRole(string(p.Role)) {
	case model.RoleAdmin:
		return true, nil
	case model.RoleCliente:
		return caso.ClienteID == p.ID, nil
	case model.RoleAnalista, model.RoleAbogado:
		has, err := s.repo.HasAsignacion(ctx, caso.ID, p.ID)
		if err != nil {
			return false, apperrors.Unavailable(err)
		}
		return has, nil
	default:
		return false, nil
	}
}
