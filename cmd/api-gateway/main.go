package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-registration-api/api/swagger"
	"github.com/noah-isme/course-registration-api/internal/handler"
	internalmiddleware "github.com/noah-isme/course-registration-api/internal/middleware"
	"github.com/noah-isme/course-registration-api/internal/models"
	"github.com/noah-isme/course-registration-api/internal/repository"
	"github.com/noah-isme/course-registration-api/internal/service"
	"github.com/noah-isme/course-registration-api/pkg/cache"
	"github.com/noah-isme/course-registration-api/pkg/config"
	"github.com/noah-isme/course-registration-api/pkg/database"
	"github.com/noah-isme/course-registration-api/pkg/jobs"
	"github.com/noah-isme/course-registration-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-registration-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-registration-api/pkg/middleware/requestid"
)

// @title Course Registration API
// @version 1.0.0
// @description Enrollment admission engine: admits, waitlists or rejects section enrollment requests.
// @BasePath /api
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Availability.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, availability cache disabled", zap.Error(err))
			redisClient = nil
		}
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	sectionRepo := repository.NewSectionRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	waitlistRepo := repository.NewWaitlistRepository(db)
	admissionRepo := repository.NewAdmissionRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Availability.CacheTTL, logr, redisClient != nil)
	availabilitySvc := service.NewAvailabilityService(sectionRepo, cacheSvc, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	deps := service.EnrollmentDeps{
		Invalidator: availabilitySvc,
		Metrics:     metricsSvc,
		Validator:   validate,
		Logger:      logr,
	}
	if cfg.Audit.Enabled {
		recorder := service.NewAuditRecorder(userRepo, jobs.QueueConfig{
			Workers:    cfg.Audit.Workers,
			MaxRetries: cfg.Audit.Retries,
			Logger:     logr,
		})
		recorder.Start(ctx)
		defer recorder.Stop()
		deps.Events = recorder
	}

	enrollmentSvc := service.NewEnrollmentService(sectionRepo, registrationRepo, admissionRepo, service.EnrollmentConfig{
		MaxAttempts:  cfg.Enrollment.MaxAttempts,
		RetryBackoff: cfg.Enrollment.RetryBackoff,
		TxTimeout:    cfg.Enrollment.TxTimeout,
	}, deps)
	sectionSvc := service.NewSectionService(sectionRepo, waitlistRepo)
	studentSvc := service.NewStudentService(registrationRepo, waitlistRepo)
	rosterSvc := service.NewRosterService(sectionRepo, registrationRepo, logr)

	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc, logr)
	sectionHandler := handler.NewSectionHandler(sectionSvc, availabilitySvc, rosterSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	authHandler := handler.NewAuthHandler(authSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	requireAuth := internalmiddleware.JWT(authSvc)

	if cfg.Enrollment.RequireAuth {
		api.POST("/enroll", requireAuth, internalmiddleware.RequireRoles(models.RoleStudent, models.RoleAdmin), enrollmentHandler.Enroll)
	} else {
		api.POST("/enroll", internalmiddleware.OptionalJWT(authSvc), enrollmentHandler.Enroll)
	}

	sections := api.Group("/sections/:id")
	sections.GET("", sectionHandler.Get)
	sections.GET("/availability", sectionHandler.Availability)
	staff := sections.Group("", requireAuth, internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleFaculty))
	staff.GET("/waitlist", sectionHandler.Waitlist)
	staff.GET("/roster", sectionHandler.Roster)

	students := api.Group("/students/:id", requireAuth, internalmiddleware.RBAC(string(models.RoleAdmin), internalmiddleware.Self))
	students.GET("/registrations", studentHandler.Registrations)
	students.GET("/waitlists", studentHandler.Waitlists)

	authed := api.Group("", requireAuth)
	authed.GET("/auth/me", authHandler.Me)
	authed.GET("/metrics/summary", internalmiddleware.RequireRoles(models.RoleAdmin), metricsHandler.Summary)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
