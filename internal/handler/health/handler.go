package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	db *sqlx.DB
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Check)
}

// Check reports liveness and store reachability
func (h *Handler) Check(c *gin.Context) {
	status := "ok"
	code := http.StatusOK

	if err := h.db.PingContext(c.Request.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{"status": status})
}
