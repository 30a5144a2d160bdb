package session

import (
	"sync"

	"github.com/lexgestion/portal-api/internal/model"
)

// Store holds the authenticated identity and its resolved profile for one
// principal. It is the single mutable cell the other components consult:
// the profile resolver writes it, logout clears it, everything else reads.
type Store struct {
	mu       sync.RWMutex
	identity *model.Identity
	profile  *model.Profile
	state    State
}

func NewStore() *Store {
	return &Store{state: StateInitializing}
}

func (s *Store) Identity() *model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

func (s *Store) Profile() *model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Store) SetIdentity(identity *model.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
}

func (s *Store) SetProfile(profile *model.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
}

// Clear drops identity and profile on sign-out and resets the state machine.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
	s.profile = nil
	s.state = StateUnauthenticated
}

// State returns the current routing state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SetState moves the routing state machine, rejecting transitions out of the
// terminal Error state; only a fresh store (manual reload) leaves Error.
func (s *Store) SetState(next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateError {
		return false
	}
	s.state = next
	return true
}
