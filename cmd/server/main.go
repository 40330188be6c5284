package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sudays/sudays-backend/config"
	"github.com/sudays/sudays-backend/internal/app/controller"
	"github.com/sudays/sudays-backend/internal/app/repository"
	"github.com/sudays/sudays-backend/internal/app/service"
	"github.com/sudays/sudays-backend/internal/db"
	"github.com/sudays/sudays-backend/internal/middleware"
	"github.com/sudays/sudays-backend/internal/router"
	"github.com/sudays/sudays-backend/internal/scheduler"
	"github.com/sudays/sudays-backend/internal/storage"
	"github.com/sudays/sudays-backend/pkg/logger"
	"github.com/sudays/sudays-backend/pkg/mail"
	"github.com/sudays/sudays-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{Level: "info", Format: "console"}).Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := cfg.Log.Level
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	log := logger.New(logger.Config{
		Level:       logLevel,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Server.Environment == "development",
	})

	log.Info("Starting Sudays Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	database, err := db.Initialize(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			log.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(database, log); err != nil {
		log.Fatal("Failed to run migrations", err)
	}

	// Redis backs the token blacklist; without it logout is best-effort
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.Connect(&cfg.Redis, log)
		if err != nil {
			log.Warn("Redis unavailable, token revocation disabled", map[string]interface{}{
				"error": err.Error(),
			})
			redisClient = nil
		}
	}
	blacklist := redis.NewTokenBlacklist(redisClient, log)
	defer func() {
		if err := blacklist.Close(); err != nil {
			log.Error("Failed to close Redis connection", err)
		}
	}()

	blobs, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize image storage", err)
	}

	sender, err := mail.NewSender(cfg.Email, log)
	if err != nil {
		log.Fatal("Failed to initialize mail sender", err)
	}

	// Initialize repositories
	memberRepo := repository.NewMemberRepository(database, log)
	verificationRepo := repository.NewEmailVerificationRepository(database, log)
	diaryRepo := repository.NewDiaryRepository(database, log)
	imageRepo := repository.NewDiaryImageRepository(database, log)

	// Initialize services
	verificationService := service.NewVerificationService(database, verificationRepo, sender, cfg.Email, log)
	authService := service.NewAuthService(
		database,
		memberRepo,
		verificationRepo,
		verificationService,
		blacklist,
		cfg.JWT,
		log,
	)
	diaryService := service.NewDiaryService(database, diaryRepo, imageRepo, blobs, cfg.Diary, log)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	// Initialize controllers
	secureCookies := cfg.Server.Environment == "production"
	authController := controller.NewAuthController(authService, cfg.JWT, secureCookies)
	memberController := controller.NewMemberController(authService)
	verificationController := controller.NewVerificationController(verificationService, metrics)
	diaryController := controller.NewDiaryController(diaryService)

	authMiddleware := middleware.NewAuthMiddleware(authService)

	// Setup router
	r := router.NewRouter(
		authController,
		memberController,
		verificationController,
		diaryController,
		authMiddleware,
		metrics,
		cfg,
		log,
	)
	engine := r.Setup(ctx)

	var cleanup *scheduler.VerificationCleanupScheduler
	if cfg.Email.EnableAutoCleanup {
		cleanup = scheduler.NewVerificationCleanupScheduler(verificationService, cfg.Email.CleanupCronSchedule, log)
		if err := cleanup.Start(); err != nil {
			log.Fatal("Failed to start verification cleanup scheduler", err)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err)
	}

	// in-flight verification mails
	verificationController.Wait()
	if cleanup != nil {
		cleanup.Stop()
	}

	log.Info("Server stopped successfully")
}
