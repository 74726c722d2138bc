package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"go.uber.org/zap"

	"placeReviewsAPI/handlers"
	"placeReviewsAPI/internal/config"
	"placeReviewsAPI/internal/logging"
	"placeReviewsAPI/internal/storage"
	"placeReviewsAPI/internal/view"
	"placeReviewsAPI/internal/workers"
	"placeReviewsAPI/middleware"
	"placeReviewsAPI/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal("Failed to create logger:", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	blobs, err := storage.Open(openCtx, storage.Options{
		Driver:      cfg.StorageDriver,
		Dir:         cfg.StorageDir,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	})
	cancel()
	if err != nil {
		logger.Fatal("Failed to open storage", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer func() {
		logger.Info("Closing storage...")
		blobs.Close()
	}()
	logger.Info("Storage ready", zap.String("driver", cfg.StorageDriver))

	middleware.InitPrometheus()
	services.InitMetrics()

	placeService := services.NewPlaceService(blobs, logger)
	if err := placeService.Load(ctx); err != nil {
		// A corrupt snapshot is not repaired automatically; clear it or reset via the API.
		logger.Fatal("Failed to load places", zap.Error(err))
	}

	flushCtx, stopFlush := context.WithCancel(context.Background())
	flushDone := workers.StartFlushWorker(flushCtx, placeService, cfg.FlushInterval, logger)

	adminService, err := services.NewAdminService(services.AdminConfig{
		Passcode:      cfg.AdminPasscode,
		PasscodeHash:  cfg.AdminPasscodeHash,
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.AdminSessionTTL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize admin gate", zap.Error(err))
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		logger.Fatal("Failed to parse templates", zap.Error(err))
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go rateLimiter.CleanupVisitors(ctx)

	r := handlers.NewRouter(handlers.RouterConfig{
		Places:      handlers.NewPlaceHandler(placeService, logger),
		Admin:       handlers.NewAdminHandler(adminService, logger),
		Pages:       handlers.NewPageHandler(placeService, adminService, renderer, logger),
		Sessions:    adminService,
		RateLimiter: rateLimiter,
		Logger:      logger,
		Health:      blobs.Ping,
		MetricsUser: cfg.MetricsUser,
		MetricsPass: cfg.MetricsPass,
		PprofSecret: cfg.PprofSecret,
	})

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret", middleware.RequestIDHeader}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", middleware.RequestIDHeader}),
	)
	recovery := gorilllaHandlers.RecoveryHandler(
		gorilllaHandlers.RecoveryLogger(zap.NewStdLog(logger)),
	)

	server := http.Server{
		Addr:         cfg.Addr(),
		Handler:      recovery(corsHandler(r)),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Error starting server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	stopFlush()
	<-flushDone

	logger.Info("Server shutdown complete")
}
