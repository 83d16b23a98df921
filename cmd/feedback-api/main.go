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

	_ "github.com/nextgen-hr/feedback-request-api/api/swagger"
	"github.com/nextgen-hr/feedback-request-api/internal/handler"
	"github.com/nextgen-hr/feedback-request-api/internal/middleware"
	"github.com/nextgen-hr/feedback-request-api/internal/repository"
	"github.com/nextgen-hr/feedback-request-api/internal/service"
	"github.com/nextgen-hr/feedback-request-api/pkg/cache"
	"github.com/nextgen-hr/feedback-request-api/pkg/config"
	"github.com/nextgen-hr/feedback-request-api/pkg/database"
	"github.com/nextgen-hr/feedback-request-api/pkg/logger"
	corsmiddleware "github.com/nextgen-hr/feedback-request-api/pkg/middleware/cors"
	reqidmiddleware "github.com/nextgen-hr/feedback-request-api/pkg/middleware/requestid"
)

// @title Feedback Request API
// @version 1.0.0
// @description Multi-party feedback request workflow service
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
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Feedback.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, projection cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Feedback.CacheTTL, logr, true)
		}
	}

	feedbackRepo := repository.NewFeedbackRequestRepository(db)

	authSvc := service.NewAuthService(service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret}, logr)
	emailSvc := service.NewEmailService(service.EmailConfig{
		APIKey:      cfg.Email.APIKey,
		FromName:    cfg.Email.FromName,
		FromAddress: cfg.Email.FromAddress,
		Enabled:     cfg.Email.Enabled,
	}, logr)
	directorySvc := service.NewDirectoryService(service.DirectoryConfig{
		BaseURL: cfg.Directory.BaseURL,
		Timeout: cfg.Directory.Timeout,
	}, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := service.NewNotificationDispatcher(emailSvc, cfg.Notifications.Workers, logr)
	if cfg.Notifications.Enabled {
		dispatcher.Start(ctx)
		defer dispatcher.Stop()
	}

	feedbackSvc := service.NewFeedbackRequestService(feedbackRepo, directorySvc, dispatcher, cacheSvc, validator.New(), logr)
	exportSvc := service.NewExportService(feedbackRepo, logr)

	feedbackHandler := handler.NewFeedbackRequestHandler(feedbackSvc, exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	{
		feedback := api.Group("/feedback-requests")
		feedback.POST("", feedbackHandler.Create)
		feedback.GET("", feedbackHandler.List)
		feedback.GET("/requester/:requesterId", feedbackHandler.ListByRequester)
		feedback.GET("/:id/form", feedbackHandler.Form)
		feedback.PUT("/:id/review", feedbackHandler.Review)
		feedback.POST("/:id/answers", feedbackHandler.SubmitAnswer)
		feedback.POST("/:id/appraisers", feedbackHandler.AddAppraiser)
		feedback.DELETE("/:id/appraisers/:email", feedbackHandler.RemoveAppraiser)
		feedback.POST("/:id/questions", feedbackHandler.AddQuestion)
		feedback.PUT("/:id/questions/:index", feedbackHandler.UpdateQuestion)
		feedback.DELETE("/:id/questions/:index", feedbackHandler.RemoveQuestion)
		feedback.POST("/:id/notify-pdm", feedbackHandler.NotifyPDM)
		feedback.POST("/:id/notify-appraisers", feedbackHandler.NotifyAppraisers)
		feedback.DELETE("/:id", feedbackHandler.Delete)
		if cfg.Exports.Enabled {
			feedback.GET("/:id/export", feedbackHandler.Export)
		}

		api.GET("/pdm/feedback-requests", feedbackHandler.ListForPDM)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
