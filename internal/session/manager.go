package session

import (
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
)

// Manager keeps one Store per authenticated principal, expiring idle
// sessions. A dropped entry simply forces a fresh resolution on the next
// request; nothing durable lives here.
type Manager struct {
	stores *cache.Cache
}

func NewManager(ttl time.Duration) *Manager {
	return &Manager{
		stores: cache.New(ttl, 2*ttl),
	}
}

// For returns the store for a principal, creating it on first use.
func (m *Manager) For(userID uuid.UUID) *Store {
	key := userID.String()
	if v, ok := m.stores.Get(key); ok {
		m.stores.SetDefault(key, v)
		return v.(*Store)
	}

	store := NewStore()
	m.stores.SetDefault(key, store)
	return store
}

// Drop removes a principal's store on sign-out
func (m *Manager) Drop(userID uuid.UUID) {
	m.stores.Delete(userID.String())
}
