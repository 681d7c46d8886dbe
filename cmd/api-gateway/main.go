package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/icbf-conecta-api/api/swagger"
	"github.com/noah-isme/icbf-conecta-api/internal/handler"
	internalmiddleware "github.com/noah-isme/icbf-conecta-api/internal/middleware"
	"github.com/noah-isme/icbf-conecta-api/internal/repository"
	"github.com/noah-isme/icbf-conecta-api/internal/service"
	"github.com/noah-isme/icbf-conecta-api/pkg/cache"
	"github.com/noah-isme/icbf-conecta-api/pkg/config"
	"github.com/noah-isme/icbf-conecta-api/pkg/database"
	"github.com/noah-isme/icbf-conecta-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/icbf-conecta-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/icbf-conecta-api/pkg/middleware/requestid"
)

// @title ICBF Conecta API
// @version 0.1.0
// @description Monthly child development evaluations for community households
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
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Evaluations.CacheTTL, logr.Named("cache"),
		cfg.Evaluations.CacheEnabled && redisClient != nil)
	if cacheSvc.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := cacheSvc.FlushEvaluations(ctx); err != nil {
			logr.Warn("failed to clear evaluation cache on startup", zap.Error(err))
		}
		cancel()
	}

	evaluationSvc := service.NewEvaluationService(
		repository.NewEvaluationRepository(db),
		repository.NewObservationRepository(db),
		repository.NewAttendanceRepository(db),
		repository.NewIncidentRepository(db),
		repository.NewChildRepository(db),
		cacheSvc,
		metricsSvc,
		validator.New(),
		logr.Named("evaluations"),
		service.EvaluationServiceConfig{CacheTTL: cfg.Evaluations.CacheTTL},
	)

	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)
	evaluationHandler := handler.NewEvaluationHandler(evaluationSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(internalmiddleware.Metrics(metricsSvc, cfg.Metrics.Path))
		r.GET(cfg.Metrics.Path, metricsHandler.Prometheus)
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	evaluations := api.Group("/evaluations")
	evaluations.POST("", evaluationHandler.Generate)
	evaluations.POST("/preview", evaluationHandler.Preview)
	evaluations.GET("", evaluationHandler.List)
	evaluations.GET("/:id", evaluationHandler.Get)
	evaluations.PUT("/:id", evaluationHandler.Update)
	evaluations.DELETE("/:id", evaluationHandler.Delete)
	evaluations.DELETE("", evaluationHandler.DeleteMany)
	evaluations.POST("/:id/regenerate", evaluationHandler.Regenerate)
	evaluations.POST("/:id/trend", evaluationHandler.RecomputeTrend)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
