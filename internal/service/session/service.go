// Package session implements the role-routing engine: one explicit state
// machine deciding, from authentication and resolved role, which view a
// principal belongs on. Screens consume its Status instead of repeating
// auth-check branches.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/lexgestion/portal-api/internal/access"
	"github.com/lexgestion/portal-api/internal/identity"
	"github.com/lexgestion/portal-api/internal/model"
	profileservice "github.com/lexgestion/portal-api/internal/service/profile"
	"github.com/lexgestion/portal-api/internal/session"
	"github.com/lexgestion/portal-api/pkg/logger"
)

// Status is the routing decision for a principal
type Status struct {
	State       session.State  `json:"state"`
	Role        model.Role     `json:"role,omitempty"`
	LandingPath string         `json:"landing_path"`
	Profile     *model.Profile `json:"profile,omitempty"`
	Message     string         `json:"message,omitempty"`
}

type Service struct {
	provider identity.Provider
	resolver *profileservice.Resolver
	sessions *session.Manager
	poll     profileservice.PollConfig
	logger   *logger.Logger
}

func NewService(provider identity.Provider, resolver *profileservice.Resolver,
	sessions *session.Manager, poll profileservice.PollConfig, logger *logger.Logger) *Service {
	return &Service{
		provider: provider,
		resolver: resolver,
		sessions: sessions,
		poll:     poll,
		logger:   logger,
	}
}

// Bootstrap runs the Initializing transitions: ask the provider for a
// session, resolve the profile, land on the role's canonical route. A
// missing or invalid token lands on Unauthenticated; a provider failure is
// the terminal Error state. With await set the bounded provisioning poll
// runs before the routing decision.
func (s *Service) Bootstrap(ctx context.Context, accessToken string, await bool) Status {
	sess, err := s.provider.GetSession(ctx, accessToken)
	if err != nil {
		if errors.Is(err, identity.ErrNoSession) {
			return Status{
				State:       session.StateUnauthenticated,
				LandingPath: access.PathLogin,
			}
		}
		// Provider failure during bootstrap is the one legitimately blocking
		// error; the session stays in the terminal Error state until reload.
		s.logger.Error(err, "identity provider failed during bootstrap")
		return Status{
			State:       session.StateError,
			LandingPath: access.PathLogin,
			Message:     "identity provider unavailable",
		}
	}

	return s.authenticated(ctx, sess.Identity, await)
}

// SignUp registers the identity and then polls for the asynchronously
// provisioned profile before deciding the landing route.
func (s *Service) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.Session, Status, error) {
	sess, err := s.provider.SignUp(ctx, req)
	if err != nil {
		return nil, Status{State: session.StateUnauthenticated, LandingPath: access.PathLogin}, err
	}

	st := s.authenticated(ctx, sess.Identity, true)
	return sess, st, nil
}

// SignIn is the Unauthenticated → Authenticated(role) transition
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Session, Status, error) {
	sess, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, Status{State: session.StateUnauthenticated, LandingPath: access.PathLogin}, err
	}

	st := s.authenticated(ctx, sess.Identity, true)
	return sess, st, nil
}

// SignOut is the Authenticated(*) → Unauthenticated transition: clear the
// session store and hand back the unauthenticated view.
func (s *Service) SignOut(ctx context.Context, ident *model.Identity) Status {
	if ident != nil {
		if err := s.provider.SignOut(ctx, ident.ID); err != nil {
			s.logger.Warn(err, "sign-out notification failed", "user_id", ident.ID)
		}
		s.sessions.For(ident.ID).Clear()
		s.sessions.Drop(ident.ID)
	}

	return Status{
		State:       session.StateUnauthenticated,
		LandingPath: access.PathLogin,
	}
}

// RedirectFor returns the route the principal should be moved to, and
// whether a redirect is needed at all. A user already on a route their role
// allows stays put; an unauthorized one goes to their own canonical landing
// path, never to a fixed default.
func (s *Service) RedirectFor(st Status, currentPath string) (string, bool) {
	switch st.State {
	case session.StateUnauthenticated, session.StateError:
		if currentPath == access.PathLogin {
			return "", false
		}
		return access.PathLogin, true
	case session.StatePendingApproval:
		if currentPath == access.PathPendiente {
			return "", false
		}
		return access.PathPendiente, true
	case session.StateAuthenticated:
		if access.AllowsPath(st.Role, currentPath) {
			return "", false
		}
		return access.LandingPath(st.Role), true
	default:
		return "", false
	}
}

func (s *Service) authenticated(ctx context.Context, ident *model.Identity, await bool) Status {
	var (
		prof *model.Profile
		err  error
	)

	if await {
		var outcome profileservice.Outcome
		prof, outcome, err = s.resolver.Await(ctx, ident, s.poll)
		if err == nil && outcome == profileservice.OutcomeTimedOut {
			s.logger.Info("profile poll exhausted, accepting forced resolution",
				"user_id", ident.ID)
		}
	} else {
		prof, err = s.resolver.Resolve(ctx, ident)
	}

	store := s.sessions.For(ident.ID)

	if err != nil || prof == nil {
		s.logger.Error(err, "profile resolution failed", "user_id", ident.ID)
		store.SetState(session.StateError)
		return Status{
			State:       session.StateError,
			LandingPath: access.PathLogin,
			Message:     "profile resolution failed",
		}
	}

	role := model.ParseRole(string(prof.Role))
	if role == model.RolePending {
		store.SetState(session.StatePendingApproval)
		return Status{
			State:       session.StatePendingApproval,
			Role:        role,
			LandingPath: access.PathPendiente,
			Profile:     prof,
		}
	}

	store.SetState(session.StateAuthenticated)
	return Status{
		State:       session.StateAuthenticated,
		Role:        role,
		LandingPath: access.LandingPath(role),
		Profile:     prof,
	}
}

// String implements fmt.Stringer for logs
func (st Status) String() string {
	return fmt.Sprintf("%s(%s)", st.State, st.Role)
}
