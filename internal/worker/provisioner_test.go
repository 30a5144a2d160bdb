package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexgestion/portal-api/internal/identity"
	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
	"github.com/lexgestion/portal-api/pkg/logger"
	"github.com/lexgestion/portal-api/pkg/messaging"
)

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*model.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[uuid.UUID]*model.Profile{}}
}

func (f *fakeProfileRepo) Create(ctx context.Context, p *model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[p.ID]; ok {
		return repository.ErrAlreadyExists
	}
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeProfileRepo) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProfileRepo) Update(ctx context.Context, p *model.Profile) error { return nil }
func (f *fakeProfileRepo) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	return nil
}
func (f *fakeProfileRepo) List(ctx context.Context, filter *model.ProfileFilter) ([]*model.Profile, error) {
	return nil, nil
}

func (f *fakeProfileRepo) get(id uuid.UUID) *model.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[id]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestProvisionerCreatesPendingProfile(t *testing.T) {
	repo := newFakeProfileRepo()
	broker := messaging.NewMemoryBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewProvisioner(repo, broker, logger.NewLogger(nil))
	go p.Run(ctx)

	// Give the subscription a moment to attach
	time.Sleep(20 * time.Millisecond)

	userID := uuid.New()
	require.NoError(t, broker.Publish(ctx, identity.Channel, identity.AuthEvent{
		Type:     identity.EventSignedUp,
		UserID:   userID,
		Email:    "nuevo@lex.test",
		Metadata: model.JSONMap{"full_name": "Nuevo Usuario"},
	}))

	waitFor(t, func() bool { return repo.get(userID) != nil })

	created := repo.get(userID)
	assert.Equal(t, model.RolePending, created.Role)
	assert.Equal(t, "Nuevo Usuario", created.FullName)
	assert.Equal(t, "nuevo@lex.test", created.Email)
}

func TestProvisionerIgnoresOtherEvents(t *testing.T) {
	repo := newFakeProfileRepo()
	broker := messaging.NewMemoryBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewProvisioner(repo, broker, logger.NewLogger(nil))
	go p.Run(ctx)
	time.Sleep(20 * time.Millisecond)

	userID := uuid.New()
	require.NoError(t, broker.Publish(ctx, identity.Channel, identity.AuthEvent{
		Type:   identity.EventSignedIn,
		UserID: userID,
		Email:  "viejo@lex.test",
	}))

	time.Sleep(50 * time.Millisecond)
	assert.Nil(t, repo.get(userID))
}

func TestProvisionerToleratesExistingProfile(t *testing.T) {
	repo := newFakeProfileRepo()
	userID := uuid.New()
	repo.profiles[userID] = &model.Profile{ID: userID, Role: model.RoleCliente, FullName: "Ya Existe"}

	broker := messaging.NewMemoryBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewProvisioner(repo, broker, logger.NewLogger(nil))
	go p.Run(ctx)
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, broker.Publish(ctx, identity.Channel, identity.AuthEvent{
		Type:   identity.EventSignedUp,
		UserID: userID,
		Email:  "ya@lex.test",
	}))

	time.Sleep(50 * time.Millisecond)

	// The existing row is untouched
	assert.Equal(t, model.RoleCliente, repo.get(userID).Role)
	assert.Equal(t, "Ya Existe", repo.get(userID).FullName)
}
