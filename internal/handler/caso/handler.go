package caso

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lexgestion/portal-api/internal/access"
	"github.com/lexgestion/portal-api/internal/middleware"
	"github.com/lexgestion/portal-api/internal/model"
	casoservice "github.com/lexgestion/portal-api/internal/service/caso"
	dashboardservice "github.com/lexgestion/portal-api/internal/service/dashboard"
	solicitudservice "github.com/lexgestion/portal-api/internal/service/solicitud"
	tareaservice "github.com/lexgestion/portal-api/internal/service/tarea"
	"github.com/lexgestion/portal-api/pkg/httputil"
)

type Handler struct {
	casos       *casoservice.Service
	tareas      *tareaservice.Service
	solicitudes *solicitudservice.Service
	dashboard   *dashboardservice.Service
}

func NewHandler(casos *casoservice.Service, tareas *tareaservice.Service,
	solicitudes *solicitudservice.Service, dashboard *dashboardservice.Service) *Handler {
	return &Handler{
		casos:       casos,
		tareas:      tareas,
		solicitudes: solicitudes,
		dashboard:   dashboard,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	casos := r.Group("/casos")
	{
		casos.GET("", h.List)
		casos.GET("/:id", h.Get)
		casos.GET("/:id/tareas", h.ListTareas)
		casos.POST("/:id/tareas", middleware.RequireRole(access.IsProfessional), h.CreateTarea)
		casos.POST("/:id/solicitudes", middleware.RequireRole(access.IsProfessional), h.CreateSolicitud)
		casos.POST("", middleware.RequireRole(access.IsProfessional), h.Create)
		casos.PUT("/:id/estado", middleware.RequireRole(access.IsAdmin), h.UpdateEstado)
		casos.DELETE("/:id", middleware.RequireRole(access.IsAdmin), h.Delete)
	}
}

// List returns the cases visible to the caller's role
func (h *Handler) List(c *gin.Context) {
	prof, _ := middleware.ProfileFromContext(c)

	casos, err := h.casos.CasesVisibleTo(c.Request.Context(), prof)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, casos)
}

// Get returns a single visible case with its company, client and
// assignments joined in.
func (h *Handler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	prof, _ := middleware.ProfileFromContext(c)

	caso, err := h.casos.Get(c.Request.Context(), prof, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, caso)
}

// Create opens a new active case
func (h *Handler) Create(c *gin.Context) {
	prof, _ := middleware.ProfileFromContext(c)

	var req model.CreateCasoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	caso, err := h.casos.Create(c.Request.Context(), prof, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.dashboard.Invalidate()
	httputil.RespondWithCreated(c, caso)
}

// UpdateEstado overwrites the case status
func (h *Handler) UpdateEstado(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req model.UpdateEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	if err := h.casos.SetEstado(c.Request.Context(), id, req.Estado); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.dashboard.Invalidate()
	httputil.RespondWithSuccess(c, gin.H{"id": id, "estado": req.Estado})
}

// Delete removes the case with its tasks, requests and assignments
func (h *Handler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.casos.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.dashboard.Invalidate()
	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}

// ListTareas returns the case's tasks for a caller that may see the case
func (h *Handler) ListTareas(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	prof, _ := middleware.ProfileFromContext(c)

	tareas, err := h.tareas.ListByCaso(c.Request.Context(), prof, id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, tareas)
}

// CreateTarea opens a pending task on the case
func (h *Handler) CreateTarea(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	prof, _ := middleware.ProfileFromContext(c)

	var req model.CreateTareaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	tarea, err := h.tareas.Create(c.Request.Context(), prof, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.dashboard.Invalidate()
	httputil.RespondWithCreated(c, tarea)
}

// CreateSolicitud raises an hour-budget request against the case
func (h *Handler) CreateSolicitud(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	prof, _ := middleware.ProfileFromContext(c)

	var req model.CreateSolicitudRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	solicitud, err := h.solicitudes.Create(c.Request.Context(), prof, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, solicitud)
}

func (h *Handler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: "invalid caso id"},
		})
		return uuid.Nil, false
	}
	return id, true
}
