package solicitud

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lexgestion/portal-api/internal/access"
	"github.com/lexgestion/portal-api/internal/middleware"
	"github.com/lexgestion/portal-api/internal/model"
	solicitudservice "github.com/lexgestion/portal-api/internal/service/solicitud"
	"github.com/lexgestion/portal-api/pkg/httputil"
)

type Handler struct {
	solicitudes *solicitudservice.Service
}

func NewHandler(solicitudes *solicitudservice.Service) *Handler {
	return &Handler{solicitudes: solicitudes}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	solicitudes := r.Group("/solicitudes")
	{
		solicitudes.GET("", h.List)
		solicitudes.PUT("/:id/estado", middleware.RequireRole(access.IsAdmin), h.Decide)
	}
}

// List returns hour-budget requests: all for admins, own for anyone else
func (h *Handler) List(c *gin.Context) {
	prof, _ := middleware.ProfileFromContext(c)

	solicitudes, err := h.solicitudes.VisibleTo(c.Request.Context(), prof)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, solicitudes)
}

// Decide moves a pending request to aprobada or rechazada
func (h *Handler) Decide(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: "invalid solicitud id"},
		})
		return
	}

	var req model.UpdateSolicitudEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	if err := h.solicitudes.Decide(c.Request.Context(), id, req.Estado); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"id": id, "estado": req.Estado})
}
