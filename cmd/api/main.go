package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/lexgestion/portal-api/config"
	"github.com/lexgestion/portal-api/internal/email"
	adminhandler "github.com/lexgestion/portal-api/internal/handler/admin"
	authhandler "github.com/lexgestion/portal-api/internal/handler/auth"
	casohandler "github.com/lexgestion/portal-api/internal/handler/caso"
	dashboardhandler "github.com/lexgestion/portal-api/internal/handler/dashboard"
	healthhandler "github.com/lexgestion/portal-api/internal/handler/health"
	perfilhandler "github.com/lexgestion/portal-api/internal/handler/perfil"
	sessionhandler "github.com/lexgestion/portal-api/internal/handler/session"
	solicitudhandler "github.com/lexgestion/portal-api/internal/handler/solicitud"
	tareahandler "github.com/lexgestion/portal-api/internal/handler/tarea"
	"github.com/lexgestion/portal-api/internal/identity"
	"github.com/lexgestion/portal-api/internal/middleware"
	"github.com/lexgestion/portal-api/internal/repository/postgres"
	"github.com/lexgestion/portal-api/internal/router"
	casoservice "github.com/lexgestion/portal-api/internal/service/caso"
	dashboardservice "github.com/lexgestion/portal-api/internal/service/dashboard"
	empresaservice "github.com/lexgestion/portal-api/internal/service/empresa"
	profileservice "github.com/lexgestion/portal-api/internal/service/profile"
	sessionservice "github.com/lexgestion/portal-api/internal/service/session"
	solicitudservice "github.com/lexgestion/portal-api/internal/service/solicitud"
	tareaservice "github.com/lexgestion/portal-api/internal/service/tarea"
	usuarioservice "github.com/lexgestion/portal-api/internal/service/usuario"
	"github.com/lexgestion/portal-api/internal/session"
	"github.com/lexgestion/portal-api/internal/worker"
	"github.com/lexgestion/portal-api/pkg/auth"
	"github.com/lexgestion/portal-api/pkg/logger"
	"github.com/lexgestion/portal-api/pkg/messaging"
	redisbroker "github.com/lexgestion/portal-api/pkg/messaging/redis"
)

func main() {
	// Load .env if present; real environments configure through the process
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.InfoLevel,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Redis fans the auth events out across processes; without it the
	// in-memory broker keeps the single-process deployment working.
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisbroker.NewRedisBroker(redisbroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			PoolSize:     10,
			MinIdleConns: 2,
		}, appLogger.Zerolog())
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	} else {
		broker = messaging.NewMemoryBroker()
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	identityRepo := postgres.NewIdentityRepository(base)
	profileRepo := postgres.NewProfileRepository(base)
	empresaRepo := postgres.NewEmpresaRepository(base)
	casoRepo := postgres.NewCasoRepository(base)
	tareaRepo := postgres.NewTareaRepository(base)
	solicitudRepo := postgres.NewSolicitudRepository(base)
	statsRepo := postgres.NewStatsRepository(base)

	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        cfg.JWT.Secret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		Expiry:        time.Duration(cfg.JWT.ExpiryHours) * time.Hour,
		RefreshExpiry: time.Duration(cfg.JWT.RefreshExpiryHours) * time.Hour,
	})

	var emailSvc email.Service = email.Noop{}
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewGomailService(cfg.SMTP)
	}

	sessions := session.NewManager(cfg.Session.TTL())
	resolver := profileservice.NewResolver(profileRepo, sessions, cfg.Resolver.FallbackCacheTTL(), appLogger)
	provider := identity.NewService(identityRepo, jwtSvc, broker,
		time.Duration(cfg.JWT.ExpiryHours)*time.Hour, appLogger)

	poll := profileservice.PollConfig{
		Interval:    cfg.Resolver.PollInterval(),
		MaxAttempts: cfg.Resolver.PollMaxAttempts,
	}

	sessionSvc := sessionservice.NewService(provider, resolver, sessions, poll, appLogger)
	casoSvc := casoservice.NewService(casoRepo, solicitudRepo, appLogger)
	tareaSvc := tareaservice.NewService(tareaRepo, casoSvc, appLogger)
	empresaSvc := empresaservice.NewService(empresaRepo, appLogger)
	solicitudSvc := solicitudservice.NewService(solicitudRepo, casoSvc, appLogger)
	dashboardSvc := dashboardservice.NewService(statsRepo, appLogger)
	usuarioSvc := usuarioservice.NewService(profileRepo, emailSvc, sessions, appLogger)

	// The provisioner runs in-process alongside the API; cmd/worker hosts
	// the same loop for deployments that split it out.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	provisioner := worker.NewProvisioner(profileRepo, broker, appLogger)
	go func() {
		if err := provisioner.Run(ctx); err != nil && ctx.Err() == nil {
			appLogger.Error(err, "profile provisioner stopped")
		}
	}()

	authMiddleware := middleware.NewAuthMiddleware(provider, resolver, sessions)

	handlers := router.Handlers{
		Auth:      authhandler.NewHandler(sessionSvc, provider, appLogger),
		Session:   sessionhandler.NewHandler(sessionSvc),
		Perfil:    perfilhandler.NewHandler(usuarioSvc),
		Caso:      casohandler.NewHandler(casoSvc, tareaSvc, solicitudSvc, dashboardSvc),
		Tarea:     tareahandler.NewHandler(tareaSvc, dashboardSvc),
		Solicitud: solicitudhandler.NewHandler(solicitudSvc),
		Admin:     adminhandler.NewHandler(usuarioSvc, empresaSvc, casoSvc, dashboardSvc),
		Dashboard: dashboardhandler.NewHandler(dashboardSvc),
		Health:    healthhandler.NewHandler(db),
	}

	r := router.New(authMiddleware, handlers, router.Config{
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		AllowedOrigins: []string{"*"},
		RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		MetricsPrefix:  "portal_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, "forced shutdown")
	}
}
