package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/studyhub-labs/librarypro-api/api/swagger"
	"github.com/studyhub-labs/librarypro-api/internal/handler"
	"github.com/studyhub-labs/librarypro-api/internal/middleware"
	"github.com/studyhub-labs/librarypro-api/internal/models"
	"github.com/studyhub-labs/librarypro-api/internal/repository"
	"github.com/studyhub-labs/librarypro-api/internal/service"
	"github.com/studyhub-labs/librarypro-api/pkg/cache"
	"github.com/studyhub-labs/librarypro-api/pkg/config"
	"github.com/studyhub-labs/librarypro-api/pkg/database"
	"github.com/studyhub-labs/librarypro-api/pkg/logger"
	corsmiddleware "github.com/studyhub-labs/librarypro-api/pkg/middleware/cors"
	reqidmiddleware "github.com/studyhub-labs/librarypro-api/pkg/middleware/requestid"
)

// @title LibraryPro API
// @version 1.0.0
// @description Membership billing engine for the LibraryPro study hub
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close()
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
		}
	}

	studentRepo := repository.NewStudentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	userRepo := repository.NewUserRepository(db)

	syncSvc := service.NewSyncService(cfg.Sync, metricsSvc, logr)
	settingsSvc := service.NewSettingsService(settingsRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, settingsSvc, syncSvc, cacheSvc, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, studentRepo, settingsSvc, syncSvc, cacheSvc, metricsSvc, validate, logr)
	dashboardSvc := service.NewDashboardService(studentRepo, paymentRepo, settingsSvc, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	insightsSvc := service.NewInsightsService(studentRepo, paymentRepo, settingsSvc, logr)
	registrationSvc := service.NewRegistrationService(registrationRepo, studentRepo, paymentRepo, settingsSvc, syncSvc, validate, logr)
	exportSvc := service.NewExportService(studentRepo, paymentRepo, settingsSvc, cfg.Exports.MaxRows, logr)
	authSvc := service.NewAuthService(userRepo, cfg.JWT, validate, logr)
	bootstrapSvc := service.NewBootstrapService(studentRepo, paymentRepo, userRepo, settingsSvc, logr)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrapCtx, cancel := context.WithTimeout(rootCtx, 30*time.Second)
	if err := bootstrapSvc.Run(bootstrapCtx); err != nil {
		cancel()
		logr.Fatal("bootstrap failed", zap.Error(err))
	}
	cancel()

	syncSvc.Start(rootCtx)
	defer syncSvc.Stop()

	studentHandler := handler.NewStudentHandler(studentSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	insightsHandler := handler.NewInsightsHandler(insightsSvc)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)
	registrationHandler := handler.NewRegistrationHandler(registrationSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Public surface: the marketing site signup and staff login.
	api.GET("/plans", registrationHandler.Plans)
	api.POST("/register", registrationHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Everything else requires a staff token.
	staff := api.Group("")
	staff.Use(middleware.JWT(authSvc))
	{
		staff.GET("/auth/me", authHandler.Me)

		staff.GET("/dashboard", dashboardHandler.Summary)
		staff.GET("/dashboard/alerts", dashboardHandler.UrgentAlerts)

		staff.GET("/students", studentHandler.List)
		staff.GET("/students/:id", studentHandler.Get)
		staff.POST("/students", studentHandler.Create)
		staff.PUT("/students/:id", studentHandler.Update)

		staff.GET("/payments", paymentHandler.List)
		staff.GET("/payments/:id", paymentHandler.Get)
		staff.POST("/payments", paymentHandler.Record)
		staff.GET("/payments/:id/receipt", exportHandler.Receipt)

		staff.GET("/registrations", registrationHandler.List)
		staff.POST("/registrations/:id/complete", registrationHandler.Complete)

		staff.GET("/insights", insightsHandler.Insights)
		staff.GET("/insights/predictions", insightsHandler.Predictions)
		staff.GET("/insights/forecast", insightsHandler.RevenueForecast)

		staff.GET("/exports/students", exportHandler.Students)
		staff.GET("/exports/payments", exportHandler.Payments)

		staff.GET("/settings", settingsHandler.Get)

		// Destructive and configuration changes are admin-only.
		admin := staff.Group("")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		{
			admin.DELETE("/students/:id", studentHandler.Delete)
			admin.DELETE("/payments/:id", paymentHandler.Delete)
			admin.PUT("/settings", settingsHandler.Update)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
