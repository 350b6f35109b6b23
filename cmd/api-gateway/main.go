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
	"go.uber.org/zap"

	_ "github.com/noah-isme/language-school-api/api/swagger"
	"github.com/noah-isme/language-school-api/internal/handler"
	internalmiddleware "github.com/noah-isme/language-school-api/internal/middleware"
	"github.com/noah-isme/language-school-api/internal/repository"
	"github.com/noah-isme/language-school-api/internal/router"
	"github.com/noah-isme/language-school-api/internal/service"
	"github.com/noah-isme/language-school-api/pkg/cache"
	"github.com/noah-isme/language-school-api/pkg/config"
	"github.com/noah-isme/language-school-api/pkg/database"
	"github.com/noah-isme/language-school-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/language-school-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/language-school-api/pkg/middleware/requestid"
	"github.com/noah-isme/language-school-api/pkg/payment"
)

const shutdownTimeout = 10 * time.Second

// @title Language School API
// @version 1.0.0
// @description Class catalog, selection and enrollment service for a language school
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	snapshots := repository.NewCatalogCache(redisClient, logr)
	defer snapshots.Close() //nolint:errcheck

	var metricsSvc *service.MetricsService
	if cfg.Metrics.Enabled {
		metricsSvc = service.NewMetricsService()
		if err := metricsSvc.RegisterDB(db.DB, "postgres"); err != nil {
			logr.Warn("failed to export connection pool stats", zap.Error(err))
		}
	}
	cacheSvc := service.NewCacheService(snapshots, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	var gateway payment.Gateway
	if stripeGateway, err := payment.NewStripeGateway(cfg.Payment.SecretKey); err != nil {
		logr.Warn("payment intents disabled", zap.Error(err))
	} else {
		gateway = stripeGateway
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	selectionRepo := repository.NewSelectionRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	authSvc := service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
	})
	userSvc := service.NewUserService(userRepo, cacheSvc, validate, logr)
	classSvc := service.NewClassService(classRepo, cacheSvc, validate, logr)
	selectionSvc := service.NewSelectionService(selectionRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, cacheSvc, metricsSvc, cfg.Payment.Currency, validate, logr)
	paymentSvc := service.NewPaymentService(gateway, cfg.Payment.Currency, metricsSvc, validate, logr)
	roleGuard := service.NewRoleGuard(userRepo, logr)

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = snapshots
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if metricsSvc != nil {
		r.Use(internalmiddleware.Metrics(metricsSvc))
	}

	router.RegisterRoutes(r, router.RouteConfig{
		Auth:           handler.NewAuthHandler(authSvc),
		Users:          handler.NewUserHandler(userSvc),
		Classes:        handler.NewClassHandler(classSvc),
		Selections:     handler.NewSelectionHandler(selectionSvc),
		Enrollment:     handler.NewEnrollmentHandler(enrollmentSvc),
		Payments:       handler.NewPaymentHandler(paymentSvc),
		Ops:            handler.NewMetricsHandler(metricsSvc, checks),
		Tokens:         authSvc,
		Roles:          roleGuard,
		MetricsEnabled: metricsSvc != nil,
		DocsEnabled:    cfg.Env != config.EnvProduction,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	waitForShutdown(logr)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func waitForShutdown(logr *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logr.Info("shutting down", zap.String("signal", sig.String()))
}
