package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lexgestion/portal-api/internal/model"
	casoservice "github.com/lexgestion/portal-api/internal/service/caso"
	dashboardservice "github.com/lexgestion/portal-api/internal/service/dashboard"
	empresaservice "github.com/lexgestion/portal-api/internal/service/empresa"
	usuarioservice "github.com/lexgestion/portal-api/internal/service/usuario"
	"github.com/lexgestion/portal-api/pkg/httputil"
)

// Handler is the admin surface: user roles, companies and case
// assignments. The route group carrying it is already gated on the admin
// role.
type Handler struct {
	usuarios  *usuarioservice.Service
	empresas  *empresaservice.Service
	casos     *casoservice.Service
	dashboard *dashboardservice.Service
}

func NewHandler(usuarios *usuarioservice.Service, empresas *empresaservice.Service,
	casos *casoservice.Service, dashboard *dashboardservice.Service) *Handler {
	return &Handler{
		usuarios:  usuarios,
		empresas:  empresas,
		casos:     casos,
		dashboard: dashboard,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/usuarios", h.ListUsuarios)
	r.PUT("/usuarios/:id/rol", h.UpdateRol)

	empresas := r.Group("/empresas")
	{
		empresas.GET("", h.ListEmpresas)
		empresas.GET("/:id", h.GetEmpresa)
		empresas.POST("", h.CreateEmpresa)
		empresas.PUT("/:id", h.UpdateEmpresa)
		empresas.DELETE("/:id", h.DeleteEmpresa)
	}

	r.POST("/casos/:id/asignaciones", h.CreateAsignacion)
	r.DELETE("/casos/:id/asignaciones/:usuarioId", h.DeleteAsignacion)
}

// ListUsuarios lists profiles, optionally filtered by role or search term
func (h *Handler) ListUsuarios(c *gin.Context) {
	var filter model.ProfileFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	profiles, err := h.usuarios.List(c.Request.Context(), &filter)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, profiles)
}

// UpdateRol moves a user's role. Live sessions are not touched; the new
// role applies on the user's next resolution.
func (h *Handler) UpdateRol(c *gin.Context) {
	id, ok := h.parseParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	profile, err := h.usuarios.ChangeRole(c.Request.Context(), id, model.Role(req.Role))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.dashboard.Invalidate()
	httputil.RespondWithSuccess(c, profile)
}

func (h *Handler) ListEmpresas(c *gin.Context) {
	empresas, err := h.empresas.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, empresas)
}

func (h *Handler) GetEmpresa(c *gin.Context) {
	id, ok := h.parseParam(c, "id")
	if !ok {
		return
	}

	empresa, err := h.empresas.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, empresa)
}

func (h *Handler) CreateEmpresa(c *gin.Context) {
	var req model.CreateEmpresaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	empresa, err := h.empresas.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.dashboard.Invalidate()
	httputil.RespondWithCreated(c, empresa)
}

func (h *Handler) UpdateEmpresa(c *gin.Context) {
	id, ok := h.parseParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateEmpresaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	empresa, err := h.empresas.Update(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, empresa)
}

func (h *Handler) DeleteEmpresa(c *gin.Context) {
	id, ok := h.parseParam(c, "id")
	if !ok {
		return
	}

	if err := h.empresas.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	h.dashboard.Invalidate()
	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}

// CreateAsignacion grants a professional visibility over a case
func (h *Handler) CreateAsignacion(c *gin.Context) {
	casoID, ok := h.parseParam(c, "id")
	if !ok {
		return
	}

	var req model.CreateAsignacionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: err.Error()},
		})
		return
	}

	asignacion, err := h.casos.Assign(c.Request.Context(), casoID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, asignacion)
}

// DeleteAsignacion revokes a professional's case assignment
func (h *Handler) DeleteAsignacion(c *gin.Context) {
	casoID, ok := h.parseParam(c, "id")
	if !ok {
		return
	}
	usuarioID, ok := h.parseParam(c, "usuarioId")
	if !ok {
		return
	}

	if err := h.casos.Unassign(c.Request.Context(), casoID, usuarioID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{"caso_id": casoID, "usuario_id": usuarioID})
}

func (h *Handler) parseParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, httputil.Response{
			Success: false,
			Error:   &httputil.Error{Code: http.StatusBadRequest, Message: "invalid " + name},
		})
		return uuid.Nil, false
	}
	return id, true
}
