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

type solicitudRepository struct {
	BaseRepository
}

func NewSolicitudRepository(base BaseRepository) repository.SolicitudRepository {
	return &solicitudRepository{base}
}

const solicitudSelect = `
	SELECT s.id, s.caso_id, s.solicitante_id, s.horas, s.motivo, s.estado, s.created_at,
	       COALESCE(c.titulo, '') AS caso_titulo
	FROM solicitudes_horas s
	LEFT JOIN casos c ON c.id = s.caso_id
`

func (r *solicitudRepository) Create(ctx context.Context, solicitud *model.SolicitudHoras) error {
	query := `
		INSERT INTO solicitudes_horas (id, caso_id, solicitante_id, horas, motivo, estado, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	solicitud.ID = uuid.New()
	solicitud.CreatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query,
		solicitud.ID,
		solicitud.CasoID,
		solicitud.SolicitanteID,
		solicitud.Horas,
		solicitud.Motivo,
		solicitud.Estado,
		solicitud.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create solicitud: %w", err)
	}

	return nil
}

func (r *solicitudRepository) Get(ctx context.Context, id uuid.UUID) (*model.SolicitudHoras, error) {
	query := solicitudSelect + ` WHERE s.id = $1`

	var solicitud model.SolicitudHoras
	if err := r.db.GetContext(ctx, &solicitud, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("solicitud %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get solicitud: %w", err)
	}

	return &solicitud, nil
}

func (r *solicitudRepository) ListAll(ctx context.Context) ([]*model.SolicitudHoras, error) {
	query := solicitudSelect + ` ORDER BY s.created_at DESC`

	var solicitudes []*model.SolicitudHoras
	if err := r.db.SelectContext(ctx, &solicitudes, query); err != nil {
		return nil, fmt.Errorf("failed to list solicitudes: %w", err)
	}

	return solicitudes, nil
}

func (r *solicitudRepository) ListBySolicitante(ctx context.Context, solicitanteID uuid.UUID) ([]*model.SolicitudHoras, error) {
	query := solicitudSelect + ` WHERE s.solicitante_id = $1 ORDER BY s.created_at DESC`

	var solicitudes []*model.SolicitudHoras
	if err := r.db.SelectContext(ctx, &solicitudes, query, solicitanteID); err != nil {
		return nil, fmt.Errorf("failed to list solicitudes by solicitante: %w", err)
	}

	return solicitudes, nil
}

func (r *solicitudRepository) UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error {
	query := `UPDATE solicitudes_horas SET estado = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, estado, id)
	if err != nil {
		return fmt.Errorf("failed to update solicitud estado: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("solicitud %s: %w", id, repository.ErrNotFound)
	}

	return nil
}
