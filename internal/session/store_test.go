package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexgestion/portal-api/internal/model"
)

func TestStoreStateTransitions(t *testing.T) {
	s := NewStore()
	assert.Equal(t, StateInitializing, s.State())

	assert.True(t, s.SetState(StateUnauthenticated))
	assert.True(t, s.SetState(StateAuthenticated))
	assert.Equal(t, StateAuthenticated, s.State())
}

func TestStoreErrorStateIsTerminal(t *testing.T) {
	s := NewStore()
	require.True(t, s.SetState(StateError))

	assert.False(t, s.SetState(StateAuthenticated))
	assert.False(t, s.SetState(StateUnauthenticated))
	assert.Equal(t, StateError, s.State())
}

func TestStoreClear(t *testing.T) {
	s := NewStore()
	s.SetIdentity(&model.Identity{ID: uuid.New(), Email: "a@b.test"})
	s.SetProfile(&model.Profile{ID: uuid.New()})
	s.SetState(StateAuthenticated)

	s.Clear()

	assert.Nil(t, s.Identity())
	assert.Nil(t, s.Profile())
	assert.Equal(t, StateUnauthenticated, s.State())
}

func TestManagerReturnsSameStorePerUser(t *testing.T) {
	m := NewManager(time.Minute)
	id := uuid.New()

	a := m.For(id)
	a.SetState(StateAuthenticated)

	b := m.For(id)
	assert.Equal(t, StateAuthenticated, b.State())

	m.Drop(id)
	c := m.For(id)
	assert.Equal(t, StateInitializing, c.State())
}

func TestStateJSON(t *testing.T) {
	b, err := StateAuthenticated.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"authenticated"`, string(b))
}
