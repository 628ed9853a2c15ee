package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/faculty-eval-api/api/swagger"
	"github.com/noah-isme/faculty-eval-api/internal/handler"
	"github.com/noah-isme/faculty-eval-api/internal/middleware"
	"github.com/noah-isme/faculty-eval-api/internal/models"
	"github.com/noah-isme/faculty-eval-api/internal/repository"
	"github.com/noah-isme/faculty-eval-api/internal/service"
	"github.com/noah-isme/faculty-eval-api/pkg/cache"
	"github.com/noah-isme/faculty-eval-api/pkg/config"
	"github.com/noah-isme/faculty-eval-api/pkg/database"
	"github.com/noah-isme/faculty-eval-api/pkg/jobs"
	"github.com/noah-isme/faculty-eval-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/faculty-eval-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/faculty-eval-api/pkg/middleware/requestid"
	"github.com/noah-isme/faculty-eval-api/pkg/storage"
)

// @title Faculty Evaluation API
// @version 1.0.0
// @description REST API for faculty performance evaluation: authentication, evaluation submission, aggregation reports and report exports.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.MigrateOnBoot {
		if err := database.Migrate(ctx, db, logr); err != nil {
			logr.Sugar().Fatalw("failed to run migrations", "error", err)
		}
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()

	metricsSvc := service.NewMetricsService()
	csrfTokens := middleware.NewCSRFTokens(cfg.CSRF.Secret, cfg.CSRF.TTL)

	userRepo := repository.NewUserRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	criterionRepo := repository.NewCriterionRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	reportRepo := repository.NewReportRepository(db)
	exportRepo := repository.NewExportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Reports.CacheTTL, logr, cfg.Redis.Enabled)

	authSvc := service.NewAuthService(userRepo, csrfTokens, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "faculty-eval-api",
		SingleSession:      true,
	})
	periodSvc := service.NewPeriodService(periodRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, logr)
	facultySvc := service.NewFacultyService(facultyRepo, subjectRepo, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, validate, logr)
	criterionSvc := service.NewCriterionService(criterionRepo, logr)
	evaluationSvc := service.NewEvaluationService(evaluationRepo, facultyRepo, studentRepo, enrollmentRepo, periodSvc, criterionRepo, cacheSvc, metricsSvc, logr)
	reportSvc := service.NewReportService(reportRepo, subjectRepo, cacheSvc, cfg.Reports.CacheTTL, logr)

	var exportSvc *service.ExportService
	var exportQueue *jobs.Queue
	if cfg.Exports.Enabled {
		fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

		exportQueue = jobs.NewQueue("report-exports", nil, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			RetryDelay: 5 * time.Second,
			Logger:     logr,
		})
		exportSvc = service.NewExportService(exportRepo, reportSvc, exportQueue, fileStore, signer, metricsSvc, service.ExportConfig{
			APIPrefix:  cfg.APIPrefix,
			MaxRetries: cfg.Exports.WorkerRetries,
		}, logr)
		exportQueue.SetHandler(exportSvc.Handle)
		exportQueue.Start(ctx)
		defer exportQueue.Stop()

		exportSvc.RecoverPending(ctx)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	periodHandler := handler.NewPeriodHandler(periodSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	facultyHandler := handler.NewFacultyHandler(facultySvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	criterionHandler := handler.NewCriterionHandler(criterionSvc)
	evaluationHandler := handler.NewEvaluationHandler(evaluationSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metricsSvc))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)

		authed := auth.Group("", middleware.JWT(authSvc))
		authed.GET("/me", authHandler.Me)
		authed.POST("/logout", middleware.CSRF(csrfTokens), authHandler.Logout)
		authed.POST("/change-password", middleware.CSRF(csrfTokens), authHandler.ChangePassword)
	}

	protected := api.Group("", middleware.JWT(authSvc))
	mutating := middleware.CSRF(csrfTokens)

	periods := protected.Group("/periods")
	{
		periods.GET("/active", periodHandler.Active)
		periods.GET("/gate", periodHandler.Gate)

		admin := periods.Group("", middleware.RequireRoles(models.RoleAdmin), mutating)
		admin.GET("", periodHandler.List)
		admin.POST("", middleware.Audit(userRepo, "CREATE", "evaluation_periods"), periodHandler.Create)
		admin.PUT("/:id/activate", middleware.Audit(userRepo, "ACTIVATE", "evaluation_periods"), periodHandler.Activate)
		admin.PUT("/:id/deactivate", middleware.Audit(userRepo, "DEACTIVATE", "evaluation_periods"), periodHandler.Deactivate)
	}

	subjects := protected.Group("/subjects")
	{
		subjects.GET("", subjectHandler.List)
		subjects.GET("/:id", subjectHandler.Get)
	}

	faculty := protected.Group("/faculty")
	{
		faculty.GET("", facultyHandler.List)
		faculty.GET("/:id", facultyHandler.Get)
	}

	enrollments := protected.Group("/enrollments")
	{
		enrollments.GET("", enrollmentHandler.List)
		enrollments.POST("", middleware.RequireRoles(models.RoleAdmin), mutating, enrollmentHandler.Create)
	}
	protected.POST("/faculty-subjects", middleware.RequireRoles(models.RoleAdmin), mutating, enrollmentHandler.AssignSubject)

	protected.GET("/criteria", criterionHandler.List)

	evaluations := protected.Group("/evaluations", mutating)
	{
		evaluations.POST("", middleware.RequireRoles(models.RoleStudent), evaluationHandler.Submit)
		evaluations.POST("/self", middleware.RequireRoles(models.RoleFaculty), evaluationHandler.SubmitSelf)
	}

	reports := protected.Group("/reports")
	{
		reports.GET("/faculty/:id/summary", reportHandler.FacultySummary)
		reports.GET("/faculty/:id/criteria", reportHandler.CriterionSummaries)
		reports.GET("/faculty/:id/periods", reportHandler.PeriodSummaries)
		reports.GET("/department", middleware.RequireRoles(models.RoleDean, models.RoleAdmin), reportHandler.DepartmentReport)
	}

	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		reports.POST("/department/export", middleware.RequireRoles(models.RoleDean, models.RoleAdmin), mutating, exportHandler.Request)
		protected.GET("/exports/:id", middleware.RequireRoles(models.RoleDean, models.RoleAdmin), exportHandler.Status)

		// Download links are pre-signed, so the route skips JWT auth.
		api.GET("/exports/download/:token", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
