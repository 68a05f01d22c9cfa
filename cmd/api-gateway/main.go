package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/placement-portal-api/api/swagger"
	"github.com/noah-isme/placement-portal-api/internal/handler"
	internalmiddleware "github.com/noah-isme/placement-portal-api/internal/middleware"
	"github.com/noah-isme/placement-portal-api/internal/models"
	"github.com/noah-isme/placement-portal-api/internal/repository"
	"github.com/noah-isme/placement-portal-api/internal/service"
	"github.com/noah-isme/placement-portal-api/pkg/cache"
	"github.com/noah-isme/placement-portal-api/pkg/config"
	"github.com/noah-isme/placement-portal-api/pkg/database"
	"github.com/noah-isme/placement-portal-api/pkg/export"
	"github.com/noah-isme/placement-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/placement-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/placement-portal-api/pkg/middleware/requestid"
)

// @title Placement Portal API
// @version 1.0.0
// @description Advisor cohort resolution and performance analytics
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

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

	var redisClient *redis.Client
	if cfg.Leaderboard.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, leaderboard cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	metricsSvc := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Leaderboard.CacheTTL, logr, redisClient != nil)

	userRepo := repository.NewUserRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	var regNoOrder service.RegNoComparator
	if cfg.Analytics.NumericRegNoOrder {
		regNoOrder = service.NumericAwareOrder
	}
	resolver := service.NewRosterResolver(regNoOrder)
	aggregator := service.NewPerformanceAggregator(service.PerformanceAggregatorConfig{
		FallbackTotal:      cfg.Analytics.FallbackTotal,
		WeakTopicThreshold: cfg.Analytics.WeakTopicThreshold,
		PassingScore:       cfg.Analytics.PassingScore,
	})

	analyticsSvc := service.NewAnalyticsService(userRepo, submissionRepo, resolver, aggregator, metricsSvc, cfg.Analytics.FanOutWorkers, logr)
	assignmentSvc := service.NewAssignmentService(userRepo, validator.New(), logr)
	leaderboardSvc := service.NewLeaderboardService(userRepo, submissionRepo, aggregator, cacheSvc, cfg.Leaderboard.CacheTTL, logr)
	exportSvc := service.NewExportService(analyticsSvc, cfg.Reports.Enabled, logr, export.NewCSVExporter(), export.NewPDFExporter())
	tokenSvc := service.NewTokenService(cfg.JWT.Secret)

	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc, exportSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, map[string]handler.Pinger{
		"postgres": db,
		"redis":    handler.PingFunc(cacheRepo.Ping),
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.WithResponseMeta())
	api.Use(internalmiddleware.JWT(tokenSvc))

	api.GET("/leaderboard", leaderboardHandler.Get)

	staff := api.Group("/staff", internalmiddleware.RequireRoles(models.RoleStaff))
	staff.GET("/cohort", analyticsHandler.StaffCohort)

	hod := api.Group("/hod", internalmiddleware.RequireRoles(models.RoleHOD))
	hod.GET("/stats", analyticsHandler.Stats)
	hod.GET("/students", analyticsHandler.DepartmentStudents)
	hod.GET("/analytics", analyticsHandler.DepartmentAnalytics)
	hod.GET("/advisors", analyticsHandler.Advisors)
	hod.GET("/advisors/:id/performance", analyticsHandler.Performance)
	hod.GET("/advisors/:id/students", analyticsHandler.Students)
	hod.GET("/advisors/:id/analysis", analyticsHandler.Analysis)
	hod.GET("/advisors/:id/report", analyticsHandler.Report)
	hod.POST("/compare", analyticsHandler.Compare)

	admin := api.Group("/admin", internalmiddleware.RequireRoles(models.RoleAdmin))
	admin.GET("/advisors", assignmentHandler.List)
	admin.PUT("/advisors/:id/assignment", internalmiddleware.Audit(logr, "advisor.assign"), assignmentHandler.Assign)
	admin.GET("/system", metricsHandler.System)
	admin.DELETE("/leaderboard/cache", internalmiddleware.Audit(logr, "leaderboard.invalidate"), leaderboardHandler.Invalidate)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
