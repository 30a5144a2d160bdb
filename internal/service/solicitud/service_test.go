package solicitud

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
	casoservice "github.com/lexgestion/portal-api/internal/service/caso"
	apperrors "github.com/lexgestion/portal-api/pkg/errors"
	"github.com/lexgestion/portal-api/pkg/logger"
)

type fakeSolicitudRepo struct {
	solicitudes map[uuid.UUID]*model.SolicitudHoras
}

func newFakeSolicitudRepo() *fakeSolicitudRepo {
	return &fakeSolicitudRepo{solicitudes: map[uuid.UUID]*model.SolicitudHoras{}}
}

func (f *fakeSolicitudRepo) Create(ctx context.Context, s *model.SolicitudHoras) error {
	s.ID = uuid.New()
	f.solicitudes[s.ID] = s
	return nil
}

func (f *fakeSolicitudRepo) Get(ctx context.Context, id uuid.UUID) (*model.SolicitudHoras, error) {
	if s, ok := f.solicitudes[id]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSolicitudRepo) ListAll(ctx context.Context) ([]*model.SolicitudHoras, error) {
	var out []*model.SolicitudHoras
	for _, s := range f.solicitudes {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSolicitudRepo) ListBySolicitante(ctx context.Context, id uuid.UUID) ([]*model.SolicitudHoras, error) {
	var out []*model.SolicitudHoras
	for _, s := range f.solicitudes {
		if s.SolicitanteID == id {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSolicitudRepo) UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error {
	s, ok := f.solicitudes[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Estado = estado
	return nil
}

type fakeCasoRepo struct {
	caso     *model.Caso
	asignado uuid.UUID
}

func (f *fakeCasoRepo) Create(ctx context.Context, caso *model.Caso) error { return nil }

func (f *fakeCasoRepo) Get(ctx context.Context, id uuid.UUID) (*model.Caso, error) {
	if f.caso != nil && f.caso.ID == id {
		return f.caso, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCasoRepo) ListAll(ctx context.Context) ([]*model.Caso, error) { return nil, nil }
func (f *fakeCasoRepo) ListByCliente(ctx context.Context, id uuid.UUID) ([]*model.Caso, error) {
	return nil, nil
}
func (f *fakeCasoRepo) ListByAsignado(ctx context.Context, id uuid.UUID) ([]*model.Caso, error) {
	return nil, nil
}
func (f *fakeCasoRepo) UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error {
	return nil
}
func (f *fakeCasoRepo) DeleteWithTareas(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeCasoRepo) CreateAsignacion(ctx context.Context, a *model.Asignacion) error {
	return nil
}
func (f *fakeCasoRepo) DeleteAsignacion(ctx context.Context, casoID, usuarioID uuid.UUID) error {
	return nil
}

func (f *fakeCasoRepo) HasAsignacion(ctx context.Context, casoID, usuarioID uuid.UUID) (bool, error) {
	return usuarioID == f.asignado, nil
}

func newFixture() (*Service, *fakeSolicitudRepo, *model.Caso, *model.Profile) {
	log := logger.NewLogger(nil)
	analista := &model.Profile{ID: uuid.New(), Role: model.RoleAnalista}
	caso := &model.Caso{ID: uuid.New(), ClienteID: uuid.New(), Estado: model.EstadoCasoActivo}

	repo := newFakeSolicitudRepo()
	casos := casoservice.NewService(&fakeCasoRepo{caso: caso, asignado: analista.ID}, nil, log)
	return NewService(repo, casos, log), repo, caso, analista
}

func TestCreateSolicitud(t *testing.T) {
	svc, repo, caso, analista := newFixture()

	s, err := svc.Create(context.Background(), analista, caso.ID, &model.CreateSolicitudRequest{
		Horas:  decimal.NewFromInt(8),
		Motivo: "análisis adicional de documentación",
	})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoSolicitudPendiente, s.Estado)
	assert.Equal(t, analista.ID, s.SolicitanteID)
	assert.Contains(t, repo.solicitudes, s.ID)
}

func TestCreateSolicitudRejectsNonPositiveHoras(t *testing.T) {
	svc, _, caso, analista := newFixture()

	for _, horas := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := svc.Create(context.Background(), analista, caso.ID, &model.CreateSolicitudRequest{
			Horas:  horas,
			Motivo: "motivo",
		})
		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
	}
}

func TestCreateSolicitudRequiresVisibleCaso(t *testing.T) {
	svc, _, caso, _ := newFixture()
	stranger := &model.Profile{ID: uuid.New(), Role: model.RoleAbogado}

	_, err := svc.Create(context.Background(), stranger, caso.ID, &model.CreateSolicitudRequest{
		Horas:  decimal.NewFromInt(4),
		Motivo: "motivo",
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)
}

func TestVisibleToScopes(t *testing.T) {
	svc, repo, caso, analista := newFixture()
	ctx := context.Background()

	mine := &model.SolicitudHoras{CasoID: caso.ID, SolicitanteID: analista.ID, Estado: model.EstadoSolicitudPendiente}
	other := &model.SolicitudHoras{CasoID: caso.ID, SolicitanteID: uuid.New(), Estado: model.EstadoSolicitudPendiente}
	require.NoError(t, repo.Create(ctx, mine))
	require.NoError(t, repo.Create(ctx, other))

	own, err := svc.VisibleTo(ctx, analista)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, err := svc.VisibleTo(ctx, &model.Profile{ID: uuid.New(), Role: model.RoleAdmin})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDecide(t *testing.T) {
	svc, repo, caso, analista := newFixture()
	ctx := context.Background()

	s := &model.SolicitudHoras{CasoID: caso.ID, SolicitanteID: analista.ID, Estado: model.EstadoSolicitudPendiente}
	require.NoError(t, repo.Create(ctx, s))

	require.NoError(t, svc.Decide(ctx, s.ID, model.EstadoSolicitudAprobada))
	assert.Equal(t, model.EstadoSolicitudAprobada, repo.solicitudes[s.ID].Estado)

	// Decided requests stay decided
	err := svc.Decide(ctx, s.ID, model.EstadoSolicitudRechazada)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestDecideRejectsPendienteTarget(t *testing.T) {
	svc, repo, caso, analista := newFixture()
	ctx := context.Background()

	s := &model.SolicitudHoras{CasoID: caso.ID, SolicitanteID: analista.ID, Estado: model.EstadoSolicitudPendiente}
	require.NoError(t, repo.Create(ctx, s))

	err := svc.Decide(ctx, s.ID, model.EstadoSolicitudPendiente)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}
