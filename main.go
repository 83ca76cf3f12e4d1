// File: /main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"vastconnect-api/config"
	"vastconnect-api/database"
	"vastconnect-api/jobs"
	"vastconnect-api/middleware"
	"vastconnect-api/realtime"
	"vastconnect-api/repositories"
	"vastconnect-api/routes"
	"vastconnect-api/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	// Initialize database
	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DatabaseDebug)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Seed database with test data (development only)
	if cfg.SeedDatabase && !cfg.IsProduction() {
		if err := database.SeedData(db, time.Now().UnixNano()); err != nil {
			logger.Warn("failed to seed database", "error", err)
		}
	}

	hub := realtime.NewHub(cfg.NotificationPublishTimeout, logger)

	// Email stays off unless SMTP is configured
	var mailer services.NotificationMailer
	if cfg.EmailEnabled() {
		mailer = services.NewEmailService(cfg)
	}

	notificationService := services.NewNotificationService(repositories.NewNotificationRepository(db), hub, mailer, logger)
	dispatcher := jobs.NewNotificationDispatcher(notificationService,
		cfg.NotificationWorkers, cfg.NotificationQueueSize, cfg.NotificationTimeout, logger)
	dispatcher.Start()

	commentRepository := repositories.NewCommentRepository(db)
	postRepository := repositories.NewPostRepository(db)

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.ErrorHandler())

	err = routes.SetupRoutes(router, cfg, routes.Dependencies{
		Comments:      services.NewCommentService(commentRepository, postRepository, dispatcher, cfg.TreeCountStrategy, logger),
		Social:        services.NewSocialService(repositories.NewSocialRepository(db), postRepository, dispatcher),
		Notifications: notificationService,
		Hub:           hub,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("failed to set up routes", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting VastConnect API server", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Shutdown does not track hijacked websocket connections; closing the
	// hub ends the subscribed ones.
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	dispatcher.Stop()
	hub.Close()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	logger.Info("server exited")
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
