package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/lexgestion/portal-api/internal/access"
	"github.com/lexgestion/portal-api/internal/model"
	"github.com/lexgestion/portal-api/pkg/httputil"
)

// RequireRole gates a route group on a capability predicate. A failed
// check answers with the caller's own canonical landing path so the
// frontend redirects there instead of to a fixed default.
func RequireRole(check func(model.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		prof, ok := ProfileFromContext(c)
		if !ok {
			httputil.RespondWithRedirect(c, "permission denied", access.PathLogin)
			c.Abort()
			return
		}

		if !check(prof.Role) {
			httputil.RespondWithRedirect(c, "permission denied", access.LandingPath(prof.Role))
			c.Abort()
			return
		}

		c.Next()
	}
}
