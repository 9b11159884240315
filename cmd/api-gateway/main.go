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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/learner-grades-api/api/swagger"
	"github.com/noah-isme/learner-grades-api/internal/handler"
	"github.com/noah-isme/learner-grades-api/internal/middleware"
	"github.com/noah-isme/learner-grades-api/internal/service"
	"github.com/noah-isme/learner-grades-api/pkg/config"
	"github.com/noah-isme/learner-grades-api/pkg/export"
	"github.com/noah-isme/learner-grades-api/pkg/logger"
	reqidmiddleware "github.com/noah-isme/learner-grades-api/pkg/middleware/requestid"
)

// @title Learner Grades API
// @version 0.1.0
// @description Weighted learner averages for a course assignment group
// @BasePath /
// @schemes http

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

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           setupRouter(cfg, logr),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "api_prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	logr.Info("server stopped")
}

func setupRouter(cfg *config.Config, logr *zap.Logger) *gin.Engine {
	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
	}

	validate := validator.New()
	learnerOpts := []service.LearnerServiceOption{service.WithClock(cfg.Grading.Clock())}
	if metricsSvc != nil {
		learnerOpts = append(learnerOpts, service.WithMetrics(metricsSvc))
	}
	learnerSvc := service.NewLearnerService(validate, logr.Named("learner"), learnerOpts...)
	exportSvc := service.NewExportService(
		service.ExportConfig{Title: cfg.Export.Title},
		logr.Named("export"),
		export.NewCSVExporter(),
		export.NewPDFExporter(),
	)

	learnerHandler := handler.NewLearnerHandler(learnerSvc, exportSvc, cfg.HTTP.MaxBodyBytes)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	if metricsSvc != nil {
		r.Use(middleware.Metrics(metricsSvc))
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	if metricsSvc != nil {
		r.GET("/metrics", metricsHandler.Prometheus)
		r.GET("/metrics/summary", metricsHandler.Summary)
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/learner-data", learnerHandler.Compute)
	api.GET("/learner-data/sample", learnerHandler.Sample)

	if cfg.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
