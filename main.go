package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/username/bankconv/src/config"
	"github.com/username/bankconv/src/converter"
	"github.com/username/bankconv/src/database"
	"github.com/username/bankconv/src/handlers"
	"github.com/username/bankconv/src/logger"
	"github.com/username/bankconv/src/services"
)

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel, nil)

	logger.L.Info("bankconv upload server starting...", "version", handlers.Version)

	profile, err := converter.ResolveProfile(config.Cfg.Profile, config.Cfg.ProfilePath)
	if err != nil {
		logger.L.Error("Profile configuration invalid", "profile", config.Cfg.Profile, "path", config.Cfg.ProfilePath, "error", err)
		os.Exit(1)
	}
	conv, err := converter.New(profile)
	if err != nil {
		logger.L.Error("Failed to build converter", "error", err)
		os.Exit(1)
	}
	logger.L.Info("Converter ready", "profile", profile.Name, "account", profile.AccountName)

	var audit services.AuditStore
	if config.Cfg.DatabasePath != "" {
		logger.L.Info("Initializing audit database...", "path", config.Cfg.DatabasePath)
		if err := database.InitDB(config.Cfg.DatabasePath); err != nil {
			stdlog.Fatalf("failed to initialize audit database: %v", err)
		}
		defer database.DB.Close()
		audit = services.NewSQLAuditStore(database.DB)
	} else {
		logger.L.Info("DATABASE_PATH not set; conversion audit log disabled")
	}

	uploadService := services.NewUploadService(conv, audit)
	flashes := handlers.NewFlashStore(config.Cfg.FlashTTL)

	uploadHandler := handlers.NewUploadHandler(uploadService, flashes, config.Cfg.MaxUploadSizeBytes)
	apiHandler := handlers.NewAPIHandler(uploadService, config.Cfg.MaxUploadSizeBytes)

	router := handlers.NewRouter(uploadHandler, apiHandler, handlers.RouterOptions{
		RateLimitRPS:   config.Cfg.RateLimitRPS,
		RateLimitBurst: config.Cfg.RateLimitBurst,
		AuditEnabled:   audit != nil,
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.L.Info("Server starting", "address", serverAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			stdlog.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.L.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L.Error("Graceful shutdown failed", "error", err)
	}
}
