package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexgestion/portal-api/internal/access"
	"github.com/lexgestion/portal-api/internal/identity"
	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/internal/repository"
	profileservice "github.com/lexgestion/portal-api/internal/service/profile"
	sessionservice "github.com/lexgestion/portal-api/internal/service/session"
	sessionstore "github.com/lexgestion/portal-api/internal/session"
	"github.com/lexgestion/portal-api/pkg/logger"
)

type fakeProvider struct {
	session    *model.Session
	sessionErr error
}

func (f *fakeProvider) GetSession(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, identity.ErrNoSession
	}
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.session, nil
}

func (f *fakeProvider) SignUp(ctx context.Context, req *model.SignUpRequest) (*model.Session, error) {
	return f.session, f.sessionErr
}

func (f *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*model.Session, error) {
	return f.session, f.sessionErr
}

func (f *fakeProvider) SignOut(ctx context.Context, userID uuid.UUID) error { return nil }

func (f *fakeProvider) Refresh(ctx context.Context, token string) (*model.TokenResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProvider) OnAuthStateChange(ctx context.Context, fn func(identity.AuthEvent)) error {
	return nil
}

type stubProfileRepo struct {
	profile *model.Profile
}

func (s *stubProfileRepo) Create(ctx context.Context, p *model.Profile) error {
	s.profile = p
	return nil
}

func (s *stubProfileRepo) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	if s.profile == nil {
		return nil, repository.ErrNotFound
	}
	return s.profile, nil
}

func (s *stubProfileRepo) Update(ctx context.Context, p *model.Profile) error { return nil }
func (s *stubProfileRepo) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	return nil
}
func (s *stubProfileRepo) List(ctx context.Context, f *model.ProfileFilter) ([]*model.Profile, error) {
	return nil, nil
}

func setupRouter(provider identity.Provider, repo repository.ProfileRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := logger.NewLogger(nil)
	sessions := sessionstore.NewManager(time.Minute)
	resolver := profileservice.NewResolver(repo, sessions, 0, log)
	poll := profileservice.PollConfig{Interval: time.Millisecond, MaxAttempts: 2}
	svc := sessionservice.NewService(provider, resolver, sessions, poll, log)

	engine := gin.New()
	NewHandler(svc).RegisterRoutes(engine.Group("/api/v1"))
	return engine
}

type sessionBody struct {
	Success bool `json:"success"`
	Data    struct {
		State       string `json:"state"`
		LandingPath string `json:"landing_path"`
		RedirectTo  string `json:"redirect_to"`
	} `json:"data"`
}

func getSession(t *testing.T, engine *gin.Engine, target, token string) (*httptest.ResponseRecorder, sessionBody) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var body sessionBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestGetSessionWithoutToken(t *testing.T) {
	engine := setupRouter(&fakeProvider{}, &stubProfileRepo{})

	rec, body := getSession(t, engine, "/api/v1/session?path="+access.PathCliente, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "unauthenticated", body.Data.State)
	assert.Equal(t, access.PathLogin, body.Data.LandingPath)
	assert.Equal(t, access.PathLogin, body.Data.RedirectTo)
}

func TestGetSessionProviderOutage(t *testing.T) {
	engine := setupRouter(&fakeProvider{sessionErr: errors.New("provider down")}, &stubProfileRepo{})

	rec, body := getSession(t, engine, "/api/v1/session", "token")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, body.Success)
}

func TestGetSessionAuthenticated(t *testing.T) {
	ident := &model.Identity{ID: uuid.New(), Email: "user@lex.test"}
	provider := &fakeProvider{session: &model.Session{Identity: ident, AccessToken: "token"}}
	repo := &stubProfileRepo{profile: &model.Profile{ID: ident.ID, Email: ident.Email, Role: model.RoleCliente}}
	engine := setupRouter(provider, repo)

	rec, body := getSession(t, engine, "/api/v1/session?path="+access.PathAdmin, "token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "authenticated", body.Data.State)
	assert.Equal(t, access.PathCliente, body.Data.LandingPath)

	// Off-limits route redirects to the caller's own landing path
	assert.Equal(t, access.PathCliente, body.Data.RedirectTo)
}
