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

	_ "github.com/noah-isme/instructor-directory-api/api/swagger"
	"github.com/noah-isme/instructor-directory-api/internal/handler"
	"github.com/noah-isme/instructor-directory-api/internal/middleware"
	"github.com/noah-isme/instructor-directory-api/internal/repository"
	"github.com/noah-isme/instructor-directory-api/internal/service"
	"github.com/noah-isme/instructor-directory-api/pkg/cache"
	"github.com/noah-isme/instructor-directory-api/pkg/config"
	"github.com/noah-isme/instructor-directory-api/pkg/database"
	"github.com/noah-isme/instructor-directory-api/pkg/geocoder"
	"github.com/noah-isme/instructor-directory-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/instructor-directory-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/instructor-directory-api/pkg/middleware/requestid"
)

// @title Instructor Directory API
// @version 1.0.0
// @description Driving instructor registration, proximity search and priority listings
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

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer redisClient.Close()

	validate := validator.New()
	metrics := service.NewMetricsService()

	instructorRepo := repository.NewInstructorRepository(db, cfg.Tables.Instructors)
	testimonialRepo := repository.NewTestimonialRepository(db, cfg.Tables.Testimonials)
	configurationRepo := repository.NewConfigurationRepository(db, cfg.Tables.Configurations)
	cacheRepo := repository.NewCacheRepository(redisClient, "instructor-directory:")

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Geocoder.CacheTTL, logr, true)
	geocodeClient := geocoder.New(geocoder.Config{
		BaseURL:            cfg.Geocoder.BaseURL,
		APIKey:             cfg.Geocoder.APIKey,
		Timeout:            cfg.Geocoder.Timeout,
		BreakerMaxFailures: cfg.Geocoder.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.Geocoder.BreakerOpenTimeout,
	})
	geocodeSvc := service.NewGeocodeService(geocodeClient, cacheSvc, cfg.Geocoder.CacheTTL, cfg.Geocoder.Country, metrics, logr)
	settingsSvc := service.NewSettingsService(configurationRepo, logr, service.SettingsConfig{
		DisplayTestimonials: cfg.Directory.DisplayTestimonials,
	})
	accountSvc := service.NewAccountService(instructorRepo, validate, logr, service.AccountConfig{
		TokenSecret:        cfg.JWT.Secret,
		TokenExpiry:        cfg.JWT.Expiration,
		Issuer:             cfg.JWT.Issuer,
		LegacyPasswordCopy: cfg.Directory.LegacyPasswordCopy,
	})
	directory, err := service.NewInstructorService(instructorRepo, testimonialRepo, settingsSvc, accountSvc, geocodeSvc, metrics, validate, logr, service.InstructorServiceConfig{
		PriorityWindowMonths: cfg.Directory.PriorityWindowMonths,
		TestimonialLimit:     cfg.Directory.TestimonialLimit,
		WideAreaPattern:      cfg.Directory.WideAreaPattern,
	})
	if err != nil {
		return fmt.Errorf("build directory: %w", err)
	}

	sweeper := service.NewPrioritySweeper(directory, cfg.Directory.PrioritySweepInterval, logr)
	if cleared, err := sweeper.SweepNow(ctx); err != nil {
		logr.Warn("startup priority sweep failed", zap.Error(err))
	} else {
		logr.Info("startup priority sweep finished", zap.Int64("cleared", cleared))
	}
	sweeper.Start(ctx)
	defer sweeper.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.ResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
		"postgres": db,
		"redis":    handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }),
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), routeDeps{
		instructors: handler.NewInstructorHandler(directory),
		auth:        handler.NewAuthHandler(accountSvc),
		settings:    handler.NewSettingsHandler(settingsSvc),
		tokens:      accountSvc,
		audit:       logr,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
