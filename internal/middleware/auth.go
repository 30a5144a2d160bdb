package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lexgestion/portal-api/internal/identity"
	"github.com/lexgestion/portal-api/internal/model"
	profileservice "github.com/lexgestion/portal-api/internal/service/profile"
	"github.com/lexgestion/portal-api/internal/session"
	"github.com/lexgestion/portal-api/pkg/httputil"
)

const (
	ctxIdentityKey = "identity"
	ctxProfileKey  = "profile"
)

type AuthMiddleware struct {
	provider identity.Provider
	resolver *profileservice.Resolver
	sessions *session.Manager
}

func NewAuthMiddleware(provider identity.Provider, resolver *profileservice.Resolver, sessions *session.Manager) *AuthMiddleware {
	return &AuthMiddleware{
		provider: provider,
		resolver: resolver,
		sessions: sessions,
	}
}

// Authenticate validates the bearer token and resolves the caller's
// profile into the request context. The session store short-circuits the
// lookup for principals resolved earlier in their session.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.Response{
				Success: false,
				Error:   &httputil.Error{Code: http.StatusUnauthorized, Message: "missing authorization header"},
			})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.Response{
				Success: false,
				Error:   &httputil.Error{Code: http.StatusUnauthorized, Message: "invalid authorization format"},
			})
			return
		}

		sess, err := m.provider.GetSession(c.Request.Context(), parts[1])
		if err != nil {
			// A provider outage is not the caller's fault; only a missing
			// or invalid session maps to 401.
			if !errors.Is(err, identity.ErrNoSession) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, httputil.Response{
					Success: false,
					Error:   &httputil.Error{Code: http.StatusServiceUnavailable, Message: "identity provider unavailable"},
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, httputil.Response{
				Success: false,
				Error:   &httputil.Error{Code: http.StatusUnauthorized, Message: "invalid token"},
			})
			return
		}

		store := m.sessions.For(sess.Identity.ID)
		prof := store.Profile()
		if prof == nil {
			prof, err = m.resolver.Resolve(c.Request.Context(), sess.Identity)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, httputil.Response{
					Success: false,
					Error:   &httputil.Error{Code: http.StatusServiceUnavailable, Message: "profile resolution failed"},
				})
				return
			}
		}

		c.Set(ctxIdentityKey, sess.Identity)
		c.Set(ctxProfileKey, prof)
		c.Next()
	}
}

// IdentityFromContext returns the authenticated identity set by Authenticate
func IdentityFromContext(c *gin.Context) (*model.Identity, bool) {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return nil, false
	}
	ident, ok := v.(*model.Identity)
	return ident, ok
}

// ProfileFromContext returns the resolved profile set by Authenticate
func ProfileFromContext(c *gin.Context) (*model.Profile, bool) {
	v, ok := c.Get(ctxProfileKey)
	if !ok {
		return nil, false
	}
	prof, ok := v.(*model.Profile)
	return prof, ok
}
