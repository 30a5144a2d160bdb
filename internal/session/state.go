package session

// State enumerates the routing states of an authenticated principal.
// Error is terminal: once a provider failure marks the session broken,
// only a manual reload (a fresh Store) leaves it.
type State int

const (
	StateInitializing State = iota
	StateUnauthenticated
	StatePendingApproval
	StateAuthenticated
	StateError
)

// MarshalJSON renders the state as its string name
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StatePendingApproval:
		return "pending_approval"
	case StateAuthenticated:
		return "authenticated"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
