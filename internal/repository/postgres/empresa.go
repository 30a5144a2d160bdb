package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
)

type empresaRepository struct {
	BaseRepository
}

func NewEmpresaRepository(base BaseRepository) repository.EmpresaRepository {
	return &empresaRepository{base}
}

func (r *empresaRepository) Create(ctx context.Context, empresa *model.Empresa) error {
	query := `
		INSERT INTO empresas (id, nombre, created_at)
		VALUES ($1, $2, $3)
	`

	empresa.ID = uuid.New()
	empresa.CreatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query, empresa.ID, empresa.Nombre, empresa.CreatedAt); err != nil {
		return fmt.Errorf("failed to create empresa: %w", err)
	}

	return nil
}

func (r *empresaRepository) Get(ctx context.Context, id uuid.UUID) (*model.Empresa, error) {
	query := `SELECT id, nombre, created_at FROM empresas WHERE id = $1`

	var empresa model.Empresa
	if err := r.db.GetContext(ctx, &empresa, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("empresa %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get empresa: %w", err)
	}

	return &empresa, nil
}

func (r *empresaRepository) List(ctx context.Context) ([]*model.Empresa, error) {
	query := `SELECT id, nombre, created_at FROM empresas ORDER BY nombre`

	var empresas []*model.Empresa
	if err := r.db.SelectContext(ctx, &empresas, query); err != nil {
		return nil, fmt.Errorf("failed to list empresas: %w", err)
	}

	return empresas, nil
}

func (r *empresaRepository) Update(ctx context.Context, empresa *model.Empresa) error {
	query := `UPDATE empresas SET nombre = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, empresa.Nombre, empresa.ID)
	if err != nil {
		return fmt.Errorf("failed to update empresa: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("empresa %s: %w", empresa.ID, repository.ErrNotFound)
	}

	return nil
}

func (r *empresaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM empresas WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete empresa: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("empresa %s: %w", id, repository.ErrNotFound)
	}

	return nil
}
