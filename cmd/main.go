package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/celestiaorg/quill/internal/app"
	"github.com/celestiaorg/quill/internal/config"
	"github.com/celestiaorg/quill/internal/db"
	"github.com/celestiaorg/quill/internal/logger"
)

// shutdownTimeout bounds how long open HTTP connections get to drain
const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine, the environment may already be populated
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.InitializeAndConfigure(cfg.LogLevel)

	sslEnabled := cfg.Database.SSLEnabled
	database, err := db.New(db.Options{
		Host:        cfg.Database.Host,
		User:        cfg.Database.User,
		Password:    cfg.Database.Password,
		DBName:      cfg.Database.Name,
		Port:        cfg.Database.Port,
		SSLEnabled:  &sslEnabled,
		AutoMigrate: cfg.Database.AutoMigrate,
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	service, err := app.New(cfg, database, nil, nil)
	if err != nil {
		logger.Fatalf("Failed to build service: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := service.StartScheduler(ctx); err != nil {
		logger.Fatalf("Failed to start scheduler: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", cfg.Address)
		serverErr <- service.Listen(cfg.Address)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Errorf("Server error: %v", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := service.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Server stopped")
}
