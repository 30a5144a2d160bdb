package empresa

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
	apperrors "github.com/lexgestion/portal-api/pkg/errors"
	"github.com/lexgestion/portal-api/pkg/logger"
)

// Service is the admin-facing company management
type Service struct {
	repo   repository.EmpresaRepository
	logger *logger.Logger
}

func NewService(repo repository.EmpresaRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Create(ctx context.Context, req *model.CreateEmpresaRequest) (*model.Empresa, error) {
	empresa := &model.Empresa{Nombre: req.Nombre}
	if err := s.repo.Create(ctx, empresa); err != nil {
		s.logger.Error(err, "failed to create empresa")
		return nil, apperrors.Unavailable(err)
	}
	return empresa, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Empresa, error) {
	empresa, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("empresa", err)
		}
		return nil, apperrors.Unavailable(err)
	}
	return empresa, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Empresa, error) {
	empresas, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error(err, "failed to list empresas")
		return nil, apperrors.Unavailable(err)
	}
	if empresas == nil {
		empresas = []*model.Empresa{}
	}
	return empresas, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateEmpresaRequest) (*model.Empresa, error) {
	empresa := &model.Empresa{ID: id, Nombre: req.Nombre}
	if err := s.repo.Update(ctx, empresa); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("empresa", err)
		}
		s.logger.Error(err, "failed to update empresa", "empresa_id", id)
		return nil, apperrors.Unavailable(err)
	}
	return empresa, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("empresa", err)
		}
		s.logger.Error(err, "failed to delete empresa", "empresa_id", id)
		return apperrors.Unavailable(err)
	}
	return nil
}
