package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hanare-juku/schedule-api/api/swagger"
	"github.com/hanare-juku/schedule-api/internal/handler"
	"github.com/hanare-juku/schedule-api/internal/middleware"
	"github.com/hanare-juku/schedule-api/internal/repository"
	"github.com/hanare-juku/schedule-api/internal/service"
	"github.com/hanare-juku/schedule-api/pkg/cache"
	"github.com/hanare-juku/schedule-api/pkg/config"
	"github.com/hanare-juku/schedule-api/pkg/database"
	"github.com/hanare-juku/schedule-api/pkg/jobs"
	"github.com/hanare-juku/schedule-api/pkg/logger"
	corsmiddleware "github.com/hanare-juku/schedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hanare-juku/schedule-api/pkg/middleware/requestid"
	"github.com/hanare-juku/schedule-api/pkg/storage"

	"github.com/go-playground/validator/v10"
)

// @title Schedule API
// @version 1.0.0
// @description Day-by-day class scheduling backend for a tutoring academy.
// @BasePath /
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	// Redis is optional: without it the API still serves, just uncached.
	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Cache.TTL, logr, false)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
	}

	timeSlotRepo := repository.NewTimeSlotRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	validate := validator.New()

	backupStore, err := storage.NewLocalStorage(cfg.Backup.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init backup storage", "error", err)
	}
	backupSvc := service.NewBackupService(assignmentRepo, teacherRepo, studentRepo, backupStore, logr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var backupQueue *jobs.Queue
	if cfg.Backup.Enabled {
		backupQueue = jobs.NewQueue("schedule-backup", backupSvc.HandleJob, jobs.QueueConfig{
			Workers:    cfg.Jobs.Workers,
			BufferSize: cfg.Jobs.BufferSize,
			Logger:     logr,
		})
		backupSvc.AttachQueue(backupQueue)
		backupQueue.Start(ctx)
		defer backupQueue.Stop()
	}

	timeSlotSvc := service.NewTimeSlotService(timeSlotRepo)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, cacheSvc, backupSvc, validate, logr)
	copySvc := service.NewCopyService(teacherRepo, studentRepo, assignmentRepo, assignmentSvc, logr)

	timeSlotHandler := handler.NewTimeSlotHandler(timeSlotSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, assignmentSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	copyHandler := handler.NewCopyHandler(copySvc)
	exportHandler := handler.NewExportHandler(backupSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		pingCtx, pingCancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer pingCancel()
		if err := db.PingContext(pingCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/metrics/summary", metricsHandler.Summary)

		api.GET("/time-slots", timeSlotHandler.List)
		api.GET("/time-slots/:id", timeSlotHandler.Get)

		api.GET("/teachers", teacherHandler.List)
		api.POST("/teachers", teacherHandler.Create)
		api.POST("/teachers/find-or-create", teacherHandler.FindOrCreate)
		api.GET("/teachers/:id", teacherHandler.Get)
		api.PUT("/teachers/:id", teacherHandler.Update)
		api.DELETE("/teachers/:id", teacherHandler.Delete)

		api.GET("/students", studentHandler.List)
		api.POST("/students", studentHandler.Create)
		api.POST("/students/find-or-create", studentHandler.FindOrCreate)
		api.GET("/students/:id", studentHandler.Get)
		api.PUT("/students/:id", studentHandler.Update)
		api.DELETE("/students/:id", studentHandler.Delete)
		api.GET("/students/:id/assignments", studentHandler.Assignments)

		api.GET("/assignments", assignmentHandler.ListByDate)
		api.GET("/assignments/range", assignmentHandler.ListByRange)
		api.POST("/assignments", assignmentHandler.Create)
		api.POST("/assignments/validate", assignmentHandler.Validate)
		api.GET("/assignments/:id", assignmentHandler.Get)
		api.PUT("/assignments/:id", assignmentHandler.Update)
		api.DELETE("/assignments/:id", assignmentHandler.Delete)
		api.POST("/assignments/:id/restore", assignmentHandler.Restore)

		api.DELETE("/days/:date/assignments", assignmentHandler.DeleteAllForDate)
		api.GET("/days/:date/export.csv", exportHandler.DayCSV)
		api.GET("/days/:date/export.pdf", exportHandler.DayPDF)

		api.POST("/schedule/copy-day", copyHandler.CopyDay)
		api.POST("/schedule/copy-week", copyHandler.CopyWeek)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
