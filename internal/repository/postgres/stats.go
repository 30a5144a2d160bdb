package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
)

type statsRepository struct {
	BaseRepository
}

func NewStatsRepository(base BaseRepository) repository.StatsRepository {
	return &statsRepository{base}
}

func (r *statsRepository) count(ctx context.Context, query string, args ...interface{}) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, query, args...); err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	return n, nil
}

func (r *statsRepository) CountProfiles(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM profiles`)
}

func (r *statsRepository) CountProfilesByRole(ctx context.Context, role model.Role) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM profiles WHERE role = $1`, role)
}

func (r *statsRepository) CountEmpresas(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM empresas`)
}

func (r *statsRepository) CountCasos(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM casos`)
}

func (r *statsRepository) CountCasosByEstado(ctx context.Context, estado string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM casos WHERE estado = $1`, estado)
}

func (r *statsRepository) CountTareas(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM tareas`)
}

func (r *statsRepository) CountTareasByEstado(ctx context.Context, estado string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM tareas WHERE estado = $1`, estado)
}

func (r *statsRepository) CountTareasPendientesDe(ctx context.Context, usuarioID uuid.UUID) (int, error) {
	return r.count(ctx,
		`SELECT COUNT(*) FROM tareas WHERE asignado_a = $1 AND estado = $2`,
		usuarioID, model.EstadoTareaPendiente)
}
