package perfil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lexgestion/portal-api/internal/middleware"
	"github.com/lexgestion/portal-api/internal/model"
	usuarioservice "github.com/lexgestion/portal-api/internal/service/usuario"
	"github.com/lexgestion/portal-api/pkg/httputil"
)

type Handler struct {
	usuarios *usuarioservice.Service
}

func NewHandler(usuarios *usuarioservice.Service) *Handler {
	return &Handler{usuarios: usuarios}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.Get)
	r.PUT("/profile", h.Update)
}

// Get returns the caller's own resolved profile
func (h *Handler) Get(c *gin.Context) {
	prof, _ := middleware.ProfileFromContext(c)
	httputil.RespondWithSuccess(c, prof)
}

// Update edits the caller's own non-role fields
func (h *Handler) Update(c *gin.Context) {
	prof, _ := middleware.ProfileFromContext(c)

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	updated, err := h.usuarios.UpdateOwn(c.Request.Context(), prof, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, updated)
}
