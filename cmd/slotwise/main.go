package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/slotwise/slotwise/internal/app"
	"github.com/slotwise/slotwise/internal/appointments"
	"github.com/slotwise/slotwise/internal/auth"
	"github.com/slotwise/slotwise/internal/authz"
	"github.com/slotwise/slotwise/internal/businesses"
	"github.com/slotwise/slotwise/internal/catalog"
	"github.com/slotwise/slotwise/internal/galleries"
	"github.com/slotwise/slotwise/internal/notifications"
	"github.com/slotwise/slotwise/internal/observability"
	"github.com/slotwise/slotwise/internal/platform/cache"
	"github.com/slotwise/slotwise/internal/platform/db"
	"github.com/slotwise/slotwise/internal/rbac"
	"github.com/slotwise/slotwise/internal/shared"
	"github.com/slotwise/slotwise/internal/staff"
	"github.com/slotwise/slotwise/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "slotwise_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	rbacService := rbac.NewService(rbac.NewRepository(dbpool))
	registry := authz.NewRegistry()
	guard := authz.NewMiddleware(registry, rbacService, logger)

	authService := auth.NewService(auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)
	identityLoader := &auth.IdentityLoader{Service: authService, Logger: logger}

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	notificationsService := notifications.NewService(notifications.NewRepository(dbpool))
	dispatcher := notifications.NewDispatcher(notificationsService, jobClient, logger)
	notificationsHandler := notifications.NewHandler(logger, notificationsService, jobClient, guard)

	businessesService := businesses.NewService(businesses.NewRepository(dbpool), auditLogger)
	businessesHandler := businesses.NewHandler(logger, businessesService, guard)

	catalogService := catalog.NewService(catalog.NewRepository(dbpool))
	catalogHandler := catalog.NewHandler(logger, catalogService, guard)

	staffService := staff.NewService(staff.NewRepository(dbpool), rbacService, auditLogger)
	staffHandler := staff.NewHandler(logger, staffService, guard)

	appointmentsService := appointments.NewService(appointments.NewRepository(dbpool), idempotencyStore, dispatcher, auditLogger)
	appointmentsHandler := appointments.NewHandler(logger, appointmentsService, guard, rbacService)

	galleriesService := galleries.NewService(galleries.NewRepository(dbpool))
	galleriesHandler := galleries.NewHandler(logger, galleriesService, guard)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		SessionManager:       sessionManager,
		CSRFManager:          csrfManager,
		IdentityLoader:       identityLoader,
		AuthHandler:          authHandler,
		BusinessesHandler:    businessesHandler,
		CatalogHandler:       catalogHandler,
		StaffHandler:         staffHandler,
		AppointmentsHandler:  appointmentsHandler,
		GalleriesHandler:     galleriesHandler,
		NotificationsHandler: notificationsHandler,
		JobHandler:           jobHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
