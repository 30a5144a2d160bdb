package tarea

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lexgestion/portal-api/internal/middleware"
	"github.com/lexgestion/portal-api/internal/model"
	dashboardservice "github.com/lexgestion/portal-api/internal/service/dashboard"
	tareaservice "github.com/lexgestion/portal-api/internal/service/tarea"
	"github.com/lexgestion/portal-api/pkg/httputil"
)

type Handler struct {
	tareas    *tareaservice.Service
	dashboard *dashboardservice.Service
}

func NewHandler(tareas *tareaservice.Service, dashboard *dashboardservice.Service) *Handler {
	return &Handler{tareas: tareas, dashboard: dashboard}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	tareas := r.Group("/tareas")
	{
		tareas.GET("", h.ListMine)
		tareas.PUT("/:id/estado", h.UpdateEstado)
	}
}

// ListMine returns the caller's own assigned tasks with case titles
func (h *Handler) ListMine(c *gin.Context) {
	prof, _ := middleware.ProfileFromContext(c)

	tareas, err := h.tareas.AssignedTo(c.Request.Context(), prof.ID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, tareas)
}

// UpdateEstado overwrites the task status for an actor allowed to move it
func (h *Handler) UpdateEstado(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: "invalid tarea id"},
		})
		return
	}
	prof, _ := middleware.ProfileFromContext(c)

	var req model.UpdateEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	if err := h.tareas.SetEstado(c.Request.Context(), prof, id, req.Estado); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.dashboard.Invalidate()
	httputil.RespondWithSuccess(c, gin.H{"id": id, "estado": req.Estado})
}
