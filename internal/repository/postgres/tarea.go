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

type tareaRepository struct {
	BaseRepository
}

func NewTareaRepository(base BaseRepository) repository.TareaRepository {
	return &tareaRepository{base}
}

const tareaSelect = `
	SELECT t.id, t.caso_id, t.asignado_a, t.titulo, t.descripcion, t.estado, t.created_at,
	       COALESCE(c.titulo, '') AS caso_titulo
	FROM tareas t
	LEFT JOIN casos c ON c.id = t.caso_id
`

func (r *tareaRepository) Create(ctx context.Context, tarea *model.Tarea) error {
	query := `
		INSERT INTO tareas (id, caso_id, asignado_a, titulo, descripcion, estado, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	tarea.ID = uuid.New()
	tarea.CreatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query,
		tarea.ID,
		tarea.CasoID,
		tarea.AsignadoA,
		tarea.Titulo,
		tarea.Descripcion,
		tarea.Estado,
		tarea.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create tarea: %w", err)
	}

	return nil
}

func (r *tareaRepository) Get(ctx context.Context, id uuid.UUID) (*model.Tarea, error) {
	query := tareaSelect + ` WHERE t.id = $1`

	var tarea model.Tarea
	if err := r.db.GetContext(ctx, &tarea, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tarea %s: %w", id, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tarea: %w", err)
	}

	return &tarea, nil
}

func (r *tareaRepository) ListByAsignado(ctx context.Context, usuarioID uuid.UUID) ([]*model.Tarea, error) {
	query := tareaSelect + ` WHERE t.asignado_a = $1 ORDER BY t.created_at DESC`

	var tareas []*model.Tarea
	if err := r.db.SelectContext(ctx, &tareas, query, usuarioID); err != nil {
		return nil, fmt.Errorf("failed to list tareas by asignado: %w", err)
	}

	return tareas, nil
}

func (r *tareaRepository) ListByCaso(ctx context.Context, casoID uuid.UUID) ([]*model.Tarea, error) {
	query := tareaSelect + ` WHERE t.caso_id = $1 ORDER BY t.created_at DESC`

	var tareas []*model.Tarea
	if err := r.db.SelectContext(ctx, &tareas, query, casoID); err != nil {
		return nil, fmt.Errorf("failed to list tareas by caso: %w", err)
	}

	return tareas, nil
}

func (r *tareaRepository) UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error {
	query := `UPDATE tareas SET estado = $1 WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, estado, id)
	if err != nil {
		return fmt.Errorf("failed to update tarea estado: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("tarea %s: %w", id, repository.ErrNotFound)
	}

	return nil
}
