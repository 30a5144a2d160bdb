package caso

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
	apperrors "github.com/lexgestion/portal-api/pkg/errors"
	"github.com/lexgestion/portal-api/pkg/logger"
)

type fakeCasoRepo struct {
	casos        map[uuid.UUID]*model.Caso
	asignaciones map[uuid.UUID][]uuid.UUID // caso -> usuarios
	listErr      error
	deleted      []uuid.UUID
}

func newFakeCasoRepo() *fakeCasoRepo {
	return &fakeCasoRepo{
		casos:        map[uuid.UUID]*model.Caso{},
		asignaciones: map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeCasoRepo) Create(ctx context.Context, caso *model.Caso) error {
	caso.ID = uuid.New()
	f.casos[caso.ID] = caso
	return nil
}

func (f *fakeCasoRepo) Get(ctx context.Context, id uuid.UUID) (*model.Caso, error) {
	if c, ok := f.casos[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeCasoRepo) ListAll(ctx context.Context) ([]*model.Caso, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*model.Caso
	for _, c := range f.casos {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCasoRepo) ListByCliente(ctx context.Context, clienteID uuid.UUID) ([]*model.Caso, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*model.Caso
	for _, c := range f.casos {
		if c.ClienteID == clienteID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCasoRepo) ListByAsignado(ctx context.Context, usuarioID uuid.UUID) ([]*model.Caso, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*model.Caso
	for casoID, usuarios := range f.asignaciones {
		for _, u := range usuarios {
			if u == usuarioID {
				out = append(out, f.casos[casoID])
			}
		}
	}
	return out, nil
}

func (f *fakeCasoRepo) UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error {
	c, ok := f.casos[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Estado = estado
	return nil
}

func (f *fakeCasoRepo) DeleteWithTareas(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.casos[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.casos, id)
	delete(f.asignaciones, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeCasoRepo) CreateAsignacion(ctx context.Context, a *model.Asignacion) error {
	for _, u := range f.asignaciones[a.CasoID] {
		if u == a.UsuarioID {
			return repository.ErrAlreadyExists
		}
	}
	f.asignaciones[a.CasoID] = append(f.asignaciones[a.CasoID], a.UsuarioID)
	return nil
}

func (f *fakeCasoRepo) DeleteAsignacion(ctx context.Context, casoID, usuarioID uuid.UUID) error {
	usuarios := f.asignaciones[casoID]
	for i, u := range usuarios {
		if u == usuarioID {
			f.asignaciones[casoID] = append(usuarios[:i], usuarios[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeCasoRepo) HasAsignacion(ctx context.Context, casoID, usuarioID uuid.UUID) (bool, error) {
	for _, u := range f.asignaciones[casoID] {
		if u == usuarioID {
			return true, nil
		}
	}
	return false, nil
}

type fakeSolicitudRepo struct {
	created   []*model.SolicitudHoras
	createErr error
}

func (f *fakeSolicitudRepo) Create(ctx context.Context, s *model.SolicitudHoras) error {
	if f.createErr != nil {
		return f.createErr
	}
	s.ID = uuid.New()
	f.created = append(f.created, s)
	return nil
}

func (f *fakeSolicitudRepo) Get(ctx context.Context, id uuid.UUID) (*model.SolicitudHoras, error) {
	return nil, repository.ErrNotFound
}

func (f *fakeSolicitudRepo) ListAll(ctx context.Context) ([]*model.SolicitudHoras, error) {
	return nil, nil
}

func (f *fakeSolicitudRepo) ListBySolicitante(ctx context.Context, id uuid.UUID) ([]*model.SolicitudHoras, error) {
	return nil, nil
}

func (f *fakeSolicitudRepo) UpdateEstado(ctx context.Context, id uuid.UUID, estado string) error {
	return nil
}

func profileWith(role model.Role) *model.Profile {
	return &model.Profile{ID: uuid.New(), Email: "user@lex.test", Role: role}
}

func newTestService(repo *fakeCasoRepo) (*Service, *fakeSolicitudRepo) {
	solicitudes := &fakeSolicitudRepo{}
	return NewService(repo, solicitudes, logger.NewLogger(nil)), solicitudes
}

func seedCaso(repo *fakeCasoRepo, clienteID uuid.UUID) *model.Caso {
	caso := &model.Caso{
		ID:        uuid.New(),
		EmpresaID: uuid.New(),
		ClienteID: clienteID,
		Titulo:    "Revisión contractual",
		Estado:    model.EstadoCasoActivo,
	}
	repo.casos[caso.ID] = caso
	return caso
}

func TestCasesVisibleToAdmin(t *testing.T) {
	repo := newFakeCasoRepo()
	seedCaso(repo, uuid.New())
	seedCaso(repo, uuid.New())
	svc, _ := newTestService(repo)

	casos, err := svc.CasesVisibleTo(context.Background(), profileWith(model.RoleAdmin))
	require.NoError(t, err)
	assert.Len(t, casos, 2)
}

func TestCasesVisibleToCliente(t *testing.T) {
	repo := newFakeCasoRepo()
	cliente := profileWith(model.RoleCliente)
	seedCaso(repo, cliente.ID)
	seedCaso(repo, uuid.New())
	svc, _ := newTestService(repo)

	casos, err := svc.CasesVisibleTo(context.Background(), cliente)
	require.NoError(t, err)
	require.Len(t, casos, 1)
	assert.Equal(t, cliente.ID, casos[0].ClienteID)
}

func TestCasesVisibleToProfessionalOnlyAssigned(t *testing.T) {
	repo := newFakeCasoRepo()
	analista := profileWith(model.RoleAnalista)
	assigned := seedCaso(repo, uuid.New())
	seedCaso(repo, uuid.New())
	repo.asignaciones[assigned.ID] = []uuid.UUID{analista.ID}
	svc, _ := newTestService(repo)

	casos, err := svc.CasesVisibleTo(context.Background(), analista)
	require.NoError(t, err)
	require.Len(t, casos, 1)
	assert.Equal(t, assigned.ID, casos[0].ID)
}

func TestCasesVisibleToUnassignedProfessionalIsEmpty(t *testing.T) {
	repo := newFakeCasoRepo()
	seedCaso(repo, uuid.New())
	svc, _ := newTestService(repo)

	casos, err := svc.CasesVisibleTo(context.Background(), profileWith(model.RoleAbogado))
	require.NoError(t, err)
	assert.Empty(t, casos)
	assert.NotNil(t, casos)
}

func TestCasesVisibleToPendingIsEmptyWithoutError(t *testing.T) {
	repo := newFakeCasoRepo()
	repo.listErr = errors.New("must not be called")
	seedCaso(repo, uuid.New())
	svc, _ := newTestService(repo)

	casos, err := svc.CasesVisibleTo(context.Background(), profileWith(model.RolePending))
	require.NoError(t, err)
	assert.Empty(t, casos)
}

func TestCasesVisibleToStoreFailure(t *testing.T) {
	repo := newFakeCasoRepo()
	repo.listErr = errors.New("connection refused")
	svc, _ := newTestService(repo)

	_, err := svc.CasesVisibleTo(context.Background(), profileWith(model.RoleAdmin))
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrUnavailable, appErr.Code)
}

func TestCreateCasoStartsActive(t *testing.T) {
	repo := newFakeCasoRepo()
	svc, solicitudes := newTestService(repo)
	admin := profileWith(model.RoleAdmin)

	caso, err := svc.Create(context.Background(), admin, &model.CreateCasoRequest{
		EmpresaID: uuid.New().String(),
		ClienteID: uuid.New().String(),
		Titulo:    "Due diligence",
	})
	require.NoError(t, err)
	assert.Equal(t, model.EstadoCasoActivo, caso.Estado)
	assert.Empty(t, solicitudes.created)
}

func TestCreateCasoWithBudgetOpensSolicitud(t *testing.T) {
	repo := newFakeCasoRepo()
	svc, solicitudes := newTestService(repo)
	admin := profileWith(model.RoleAdmin)
	horas := decimal.NewFromInt(40)

	caso, err := svc.Create(context.Background(), admin, &model.CreateCasoRequest{
		EmpresaID:           uuid.New().String(),
		ClienteID:           uuid.New().String(),
		Titulo:              "Due diligence",
		HorasPresupuestadas: &horas,
	})
	require.NoError(t, err)
	require.Len(t, solicitudes.created, 1)
	assert.Equal(t, caso.ID, solicitudes.created[0].CasoID)
	assert.Equal(t, admin.ID, solicitudes.created[0].SolicitanteID)
	assert.True(t, horas.Equal(solicitudes.created[0].Horas))
	assert.Equal(t, model.EstadoSolicitudPendiente, solicitudes.created[0].Estado)
}

func TestCreateCasoSurvivesBudgetFailure(t *testing.T) {
	repo := newFakeCasoRepo()
	svc, solicitudes := newTestService(repo)
	solicitudes.createErr = errors.New("insert failed")
	horas := decimal.NewFromInt(10)

	caso, err := svc.Create(context.Background(), profileWith(model.RoleAdmin), &model.CreateCasoRequest{
		EmpresaID:           uuid.New().String(),
		ClienteID:           uuid.New().String(),
		Titulo:              "Due diligence",
		HorasPresupuestadas: &horas,
	})
	require.NoError(t, err)
	assert.Contains(t, repo.casos, caso.ID)
}

func TestSetEstadoAllowsAnyTransition(t *testing.T) {
	repo := newFakeCasoRepo()
	caso := seedCaso(repo, uuid.New())
	caso.Estado = model.EstadoCasoCerrado
	svc, _ := newTestService(repo)

	// Reopening a closed case is allowed
	require.NoError(t, svc.SetEstado(context.Background(), caso.ID, model.EstadoCasoActivo))
	assert.Equal(t, model.EstadoCasoActivo, repo.casos[caso.ID].Estado)
}

func TestSetEstadoRejectsUnknownValue(t *testing.T) {
	repo := newFakeCasoRepo()
	caso := seedCaso(repo, uuid.New())
	svc, _ := newTestService(repo)

	err := svc.SetEstado(context.Background(), caso.ID, "archivado")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestDeleteCascades(t *testing.T) {
	repo := newFakeCasoRepo()
	caso := seedCaso(repo, uuid.New())
	svc, _ := newTestService(repo)

	require.NoError(t, svc.Delete(context.Background(), caso.ID))
	assert.Equal(t, []uuid.UUID{caso.ID}, repo.deleted)

	err := svc.Delete(context.Background(), caso.ID)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestAssignValidations(t *testing.T) {
	repo := newFakeCasoRepo()
	caso := seedCaso(repo, uuid.New())
	svc, _ := newTestService(repo)
	usuario := uuid.New()

	_, err := svc.Assign(context.Background(), caso.ID, &model.CreateAsignacionRequest{
		UsuarioID: usuario.String(), RolAsignado: "admin",
	})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)

	_, err = svc.Assign(context.Background(), caso.ID, &model.CreateAsignacionRequest{
		UsuarioID: usuario.String(), RolAsignado: model.RolAsignadoAnalista,
	})
	require.NoError(t, err)

	// Duplicate assignment conflicts
	_, err = svc.Assign(context.Background(), caso.ID, &model.CreateAsignacionRequest{
		UsuarioID: usuario.String(), RolAsignado: model.RolAsignadoAnalista,
	})
	appErr, ok = apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestCanActOn(t *testing.T) {
	repo := newFakeCasoRepo()
	cliente := profileWith(model.RoleCliente)
	analista := profileWith(model.RoleAnalista)
	caso := seedCaso(repo, cliente.ID)
	repo.asignaciones[caso.ID] = []uuid.UUID{analista.ID}
	svc, _ := newTestService(repo)

	ctx := context.Background()

	ok, err := svc.CanActOn(ctx, cliente, caso.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanActOn(ctx, analista, caso.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.CanActOn(ctx, profileWith(model.RoleAbogado), caso.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CanActOn(ctx, profileWith(model.RoleCliente), caso.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.CanActOn(ctx, profileWith(model.RoleAdmin), caso.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
