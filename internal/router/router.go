package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lexgestion/portal-api/internal/access"
	adminhandler "github.com/lexgestion/portal-api/internal/handler/admin"
	authhandler "github.com/lexgestion/portal-api/internal/handler/auth"
	casohandler "github.com/lexgestion/portal-api/internal/handler/caso"
	dashboardhandler "github.com/lexgestion/portal-api/internal/handler/dashboard"
	healthhandler "github.com/lexgestion/portal-api/internal/handler/health"
	perfilhandler "github.com/lexgestion/portal-api/internal/handler/perfil"
	sessionhandler "github.com/lexgestion/portal-api/internal/handler/session"
	solicitudhandler "github.com/lexgestion/portal-api/internal/handler/solicitud"
	tareahandler "github.com/lexgestion/portal-api/internal/handler/tarea"
	"github.com/lexgestion/portal-api/internal/middleware"
)

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
	RequestTimeout time.Duration
	MetricsPrefix  string
}

type Handlers struct {
	Auth      *authhandler.Handler
	Session   *sessionhandler.Handler
	Perfil    *perfilhandler.Handler
	Caso      *casohandler.Handler
	Tarea     *tareahandler.Handler
	Solicitud *solicitudhandler.Handler
	Admin     *adminhandler.Handler
	Dashboard *dashboardhandler.Handler
	Health    *healthhandler.Handler
}

type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	handlers Handlers
	metrics  *routerMetrics
}

func New(auth *middleware.AuthMiddleware, handlers Handlers, cfg Config) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		metrics:  initRouterMetrics(cfg.MetricsPrefix),
	}

	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		r.metricsMiddleware(),
		middleware.Timeout(timeout),
		middleware.CORS(cfg.AllowedOrigins),
		middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	return r
}

func (r *Router) Setup() {
	r.handlers.Health.RegisterRoutes(r.engine)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.engine.Group("/api/v1")

	api.Use(func(c *gin.Context) {
		c.Header("X-API-Version", "1.0")
		c.Next()
	})

	// Public routes. The session endpoint does its own token handling so
	// it can report the unauthenticated state instead of a blanket 401.
	r.handlers.Auth.RegisterRoutes(api)
	r.handlers.Session.RegisterRoutes(api)

	// Protected routes
	protected := api.Group("")
	protected.Use(r.auth.Authenticate())

	r.handlers.Auth.RegisterProtectedRoutes(protected)
	r.handlers.Perfil.RegisterRoutes(protected)
	r.handlers.Caso.RegisterRoutes(protected)
	r.handlers.Tarea.RegisterRoutes(protected)
	r.handlers.Solicitud.RegisterRoutes(protected)
	r.handlers.Dashboard.RegisterRoutes(protected)

	// Admin surface, gated as a group
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(access.IsAdmin))
	r.handlers.Admin.RegisterRoutes(admin)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func initRouterMetrics(prefix string) *routerMetrics {
	m := &routerMetrics{
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}

	prometheus.MustRegister(m.requestDuration, m.requestTotal, m.errorTotal)
	return m
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
