package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/pkg/logger"
)

type fakeStatsRepo struct {
	profiles, pendientes     int
	empresas, casos, activos int
	tareas, tPendientes      int
	mine                     int

	casosErr error
	calls    int
}

func (f *fakeStatsRepo) CountProfiles(ctx context.Context) (int, error) {
	f.calls++
	return f.profiles, nil
}

func (f *fakeStatsRepo) CountProfilesByRole(ctx context.Context, role model.Role) (int, error) {
	return f.pendientes, nil
}

func (f *fakeStatsRepo) CountEmpresas(ctx context.Context) (int, error) { return f.empresas, nil }

func (f *fakeStatsRepo) CountCasos(ctx context.Context) (int, error) {
	if f.casosErr != nil {
		return 0, f.casosErr
	}
	return f.casos, nil
}

func (f *fakeStatsRepo) CountCasosByEstado(ctx context.Context, estado string) (int, error) {
	return f.activos, nil
}

func (f *fakeStatsRepo) CountTareas(ctx context.Context) (int, error) { return f.tareas, nil }

func (f *fakeStatsRepo) CountTareasByEstado(ctx context.Context, estado string) (int, error) {
	return f.tPendientes, nil
}

func (f *fakeStatsRepo) CountTareasPendientesDe(ctx context.Context, id uuid.UUID) (int, error) {
	return f.mine, nil
}

func TestComputeAllCounters(t *testing.T) {
	repo := &fakeStatsRepo{
		profiles: 12, pendientes: 3,
		empresas: 4, casos: 9, activos: 7,
		tareas: 20, tPendientes: 11,
		mine: 2,
	}
	svc := NewService(repo, logger.NewLogger(nil))
	uid := uuid.New()

	stats := svc.Compute(context.Background(), &uid)
	require.NotNil(t, stats)
	assert.Equal(t, 12, stats.TotalUsuarios)
	assert.Equal(t, 3, stats.UsuariosPendientes)
	assert.Equal(t, 4, stats.TotalEmpresas)
	assert.Equal(t, 9, stats.TotalCasos)
	assert.Equal(t, 7, stats.CasosActivos)
	assert.Equal(t, 20, stats.TotalTareas)
	assert.Equal(t, 11, stats.TareasPendientes)
	assert.Equal(t, 2, stats.MisTareasPendientes)
}

func TestComputeFailedCounterDefaultsToZero(t *testing.T) {
	repo := &fakeStatsRepo{profiles: 5, casosErr: errors.New("query timeout")}
	svc := NewService(repo, logger.NewLogger(nil))

	stats := svc.Compute(context.Background(), nil)
	require.NotNil(t, stats)

	// The failed counter is zero, the rest still computed
	assert.Equal(t, 0, stats.TotalCasos)
	assert.Equal(t, 5, stats.TotalUsuarios)
}

func TestComputeWithoutUserSkipsPersonalCounter(t *testing.T) {
	repo := &fakeStatsRepo{mine: 99}
	svc := NewService(repo, logger.NewLogger(nil))

	stats := svc.Compute(context.Background(), nil)
	assert.Equal(t, 0, stats.MisTareasPendientes)
}

func TestComputeCachesAndInvalidates(t *testing.T) {
	repo := &fakeStatsRepo{profiles: 1}
	svc := NewService(repo, logger.NewLogger(nil))
	ctx := context.Background()

	svc.Compute(ctx, nil)
	svc.Compute(ctx, nil)
	assert.Equal(t, 1, repo.calls)

	svc.Invalidate()
	svc.Compute(ctx, nil)
	assert.Equal(t, 2, repo.calls)
}
