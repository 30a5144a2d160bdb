package session

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	sessionservice "github.com/lexgestion/portal-api/internal/service/session"
	sessionstore "github.com/lexgestion/portal-api/internal/session"
	"github.com/lexgestion/portal-api/pkg/httputil"
)

type Handler struct {
	sessions *sessionservice.Service
}

func NewHandler(sessions *sessionservice.Service) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes mounts the session endpoint on the public surface. The
// routing decision distinguishes a visitor without a session from a
// provider outage, so the endpoint cannot sit behind the auth middleware.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/session", h.GetSession)
}

type statusResponse struct {
	sessionservice.Status
	RedirectTo string `json:"redirect_to,omitempty"`
}

// GetSession runs the routing decision for the caller: resolved state,
// role and landing path, plus the redirect relative to the route the
// client reports being on. A caller without a token gets the
// unauthenticated status; a provider outage is a blocking 503. With
// await=1 the bounded provisioning poll runs first.
func (h *Handler) GetSession(c *gin.Context) {
	await := c.Query("await") == "1"
	status := h.sessions.Bootstrap(c.Request.Context(), bearerToken(c), await)

	if status.State == sessionstore.StateError {
		c.JSON(http.StatusServiceUnavailable, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusServiceUnavailable, Message: status.Message},
		})
		return
	}

	resp := statusResponse{Status: status}
	if path := c.Query("path"); path != "" {
		if redirect, ok := h.sessions.RedirectFor(status, path); ok {
			resp.RedirectTo = redirect
		}
	}

	httputil.RespondWithSuccess(c, resp)
}

func bearerToken(c *gin.Context) string {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
