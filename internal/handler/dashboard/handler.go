package dashboard

import (
	"github.com/gin-gonic/gin"

	"github.com/lexgestion/portal-api/internal/middleware"
	dashboardservice "github.com/lexgestion/portal-api/internal/service/dashboard"
	"github.com/lexgestion/portal-api/pkg/httputil"
)

type Handler struct {
	dashboard *dashboardservice.Service
}

func NewHandler(dashboard *dashboardservice.Service) *Handler {
	return &Handler{dashboard: dashboard}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard/stats", h.Stats)
}

// Stats returns the counter snapshot. Every counter is present; a failed
// query shows up as zero, never as a missing field or an error.
func (h *Handler) Stats(c *gin.Context) {
	prof, _ := middleware.ProfileFromContext(c)

	userID := &prof.ID
	stats := h.dashboard.Compute(c.Request.Context(), userID)
	httputil.RespondWithSuccess(c, stats)
}
