package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexgestion/portal-api/internal/identity"
	"github.com/lexgestion/portal-api/internal/middleware"
	"github.com/lexgestion/portal-api/internal/model"
	sessionservice "github.com/lexgestion/portal-api/internal/service/session"
	"github.com/lexgestion/portal-api/pkg/httputil"
	"github.com/lexgestion/portal-api/pkg/logger"
)

type Handler struct {
	sessions *sessionservice.Service
	provider identity.Provider
	logger   *logger.Logger
}

func NewHandler(sessions *sessionservice.Service, provider identity.Provider, logger *logger.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		provider: provider,
		logger:   logger,
	}
}

// RegisterRoutes registers the public auth endpoints
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)
	}
}

// RegisterProtectedRoutes registers the auth endpoints needing a session
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.POST("/auth/logout", h.Logout)
}

type sessionResponse struct {
	Session *model.TokenResponse  `json:"session"`
	Status  sessionservice.Status `json:"status"`
}

// SignUp registers a new identity. The response already carries the
// routing status, polled through the provisioning window, so the caller
// lands on the right screen in one round trip.
func (h *Handler) SignUp(c *gin.Context) {
	var req model.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	sess, status, err := h.sessions.SignUp(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			c.JSON(http.StatusConflict, httputil.Response{
				Success: false,
				Error:   &httputil.Error{Code: http.StatusConflict, Message: "email already registered"},
			})
			return
		}
		h.logger.Error(err, "signup failed")
		c.JSON(http.StatusInternalServerError, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusInternalServerError, Message: "signup failed"},
		})
		return
	}

	httputil.RespondWithCreated(c, sessionResponse{
		Session: tokenResponse(sess),
		Status:  status,
	})
}

// Login signs a user in with email and password
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	sess, status, err := h.sessions.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, httputil.Response{
				Success: false,
				Error:   &httputil.Error{Code: http.StatusUnauthorized, Message: "invalid credentials"},
			})
			return
		}
		h.logger.Error(err, "login failed")
		c.JSON(http.StatusInternalServerError, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusInternalServerError, Message: "login failed"},
		})
		return
	}

	httputil.RespondWithSuccess(c, sessionResponse{
		Session: tokenResponse(sess),
		Status:  status,
	})
}

// Refresh exchanges a refresh token for a new token pair
func (h *Handler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	tokens, err := h.provider.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusUnauthorized, Message: "invalid refresh token"},
		})
		return
	}

	httputil.RespondWithSuccess(c, tokens)
}

// Logout clears the caller's session state
func (h *Handler) Logout(c *gin.Context) {
	ident, _ := middleware.IdentityFromContext(c)
	status := h.sessions.SignOut(c.Request.Context(), ident)
	httputil.RespondWithSuccess(c, status)
}

func tokenResponse(sess *model.Session) *model.TokenResponse {
	if sess == nil {
		return nil
	}
	return &model.TokenResponse{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
	}
}
