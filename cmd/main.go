package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/openpaddock/motorclub/config"
	"github.com/openpaddock/motorclub/db"
	"github.com/openpaddock/motorclub/handlers"
	"github.com/openpaddock/motorclub/live"
	"github.com/openpaddock/motorclub/middleware"
	"github.com/openpaddock/motorclub/models"
	"github.com/openpaddock/motorclub/repositories"
	api "github.com/openpaddock/motorclub/routes"
	"github.com/openpaddock/motorclub/services"
	"github.com/openpaddock/motorclub/storage"
)

const closureSweepInterval = 5 * time.Minute

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	hub := live.NewHub(logger)
	go hub.Run()
	logger.Info("live hub started")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	clubRepo := repositories.NewPostgresClubRepository(dbConn)
	eventRepo := repositories.NewPostgresEventRepository(dbConn)
	locationRepo := repositories.NewPostgresLocationRepository(dbConn)
	newsRepo := repositories.NewPostgresNewsRepository(dbConn)
	resultRepo := repositories.NewPostgresResultRepository(dbConn)
	carRepo, err := repositories.NewPostgresVehicleRepository(dbConn, models.VehicleKindCar)
	if err != nil {
		logger.Error("failed to initialize car repository", slog.Any("error", err))
		os.Exit(1)
	}
	motorcycleRepo, err := repositories.NewPostgresVehicleRepository(dbConn, models.VehicleKindMotorcycle)
	if err != nil {
		logger.Error("failed to initialize motorcycle repository", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("repositories initialized")

	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey)
	emailService := services.NewEmailService(cfg)
	userService := services.NewUserService(userRepo)
	clubService := services.NewClubService(repositories.NewTxRunner(dbConn), clubRepo, userRepo, uploader, logger)
	garageService := services.NewGarageService(carRepo, motorcycleRepo, uploader, logger)
	eventService := services.NewEventService(eventRepo, uploader, hub, logger)
	locationService := services.NewLocationService(locationRepo)
	newsService := services.NewNewsService(newsRepo)
	resultService := services.NewResultService(resultRepo, eventRepo)
	logger.Info("services initialized")

	// Closure sweep: runs once at startup, then on the ticker. Safe to run
	// at any frequency, the sweep itself is idempotent.
	go func() {
		ticker := time.NewTicker(closureSweepInterval)
		defer ticker.Stop()
		logger.Info("event closure scheduler started", slog.Duration("interval", closureSweepInterval))

		if err := eventService.CloseExpiredEvents(context.Background()); err != nil {
			logger.Error("closure sweep: initial run failed", slog.Any("error", err))
		}

		for range ticker.C {
			if err := eventService.CloseExpiredEvents(context.Background()); err != nil {
				logger.Error("closure sweep: periodic run failed", slog.Any("error", err))
			}
		}
	}()

	auth := middleware.NewAuth(cfg.JWTSecretKey)
	authHandler := handlers.NewAuthHandler(authService, emailService, cfg.JWTSecretKey, logger)
	userHandler := handlers.NewUserHandler(userService)
	clubHandler := handlers.NewClubHandler(clubService)
	carHandler := handlers.NewGarageHandler(garageService, models.VehicleKindCar)
	motorcycleHandler := handlers.NewGarageHandler(garageService, models.VehicleKindMotorcycle)
	eventHandler := handlers.NewEventHandler(eventService)
	locationHandler := handlers.NewLocationHandler(locationService)
	newsHandler := handlers.NewNewsHandler(newsService)
	resultHandler := handlers.NewResultHandler(resultService)
	websocketHandler := handlers.NewWebsocketHandler(hub, logger)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		auth,
		authHandler,
		userHandler,
		clubHandler,
		carHandler,
		motorcycleHandler,
		eventHandler,
		locationHandler,
		newsHandler,
		resultHandler,
		websocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
