package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
	"github.com/lexgestion/portal-api/pkg/logger"
)

const cacheTTL = 30 * time.Second

// Service computes the dashboard snapshot from independent counting
// queries. A failed counter logs and defaults to zero; the snapshot is
// always complete, never partial.
type Service struct {
	repo   repository.StatsRepository
	cache  *cache.Cache
	logger *logger.Logger
}

func NewService(repo repository.StatsRepository, logger *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache.New(cacheTTL, 2*cacheTTL),
		logger: logger,
	}
}

// Compute returns the counters, scoped to userID for the "mine" counter
// when one is supplied.
func (s *Service) Compute(ctx context.Context, userID *uuid.UUID) *model.DashboardStats {
	key := "global"
	if userID != nil {
		key = userID.String()
	}
	if v, ok := s.cache.Get(key); ok {
		return v.(*model.DashboardStats)
	}

	stats := &model.DashboardStats{
		TotalUsuarios: s.counter(ctx, "total_usuarios", s.repo.CountProfiles),
		TotalEmpresas: s.counter(ctx, "total_empresas", s.repo.CountEmpresas),
		TotalCasos:    s.counter(ctx, "total_casos", s.repo.CountCasos),
		TotalTareas:   s.counter(ctx, "total_tareas", s.repo.CountTareas),
		UsuariosPendientes: s.counter(ctx, "usuarios_pendientes", func(ctx context.Context) (int, error) {
			return s.repo.CountProfilesByRole(ctx, model.RolePending)
		}),
		CasosActivos: s.counter(ctx, "casos_activos", func(ctx context.Context) (int, error) {
			return s.repo.CountCasosByEstado(ctx, model.EstadoCasoActivo)
		}),
		TareasPendientes: s.counter(ctx, "tareas_pendientes", func(ctx context.Context) (int, error) {
			return s.repo.CountTareasByEstado(ctx, model.EstadoTareaPendiente)
		}),
	}

	if userID != nil {
		uid := *userID
		stats.MisTareasPendientes = s.counter(ctx, "mis_tareas_pendientes", func(ctx context.Context) (int, error) {
			return s.repo.CountTareasPendientesDe(ctx, uid)
		})
	}

	s.cache.SetDefault(key, stats)
	return stats
}

// Invalidate drops cached snapshots after a mutation so the next read
// recomputes.
func (s *Service) Invalidate() {
	s.cache.Flush()
}

func (s *Service) counter(ctx context.Context, name string, count func(context.Context) (int, error)) int {
	n, err := count(ctx)
	if err != nil {
		s.logger.Warn(err, "stats counter failed, defaulting to zero", "counter", name)
		return 0
	}
	return n
}
