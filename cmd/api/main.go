package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/leozw/pdns-rest/internal/api"
	"github.com/leozw/pdns-rest/internal/config"
	"github.com/leozw/pdns-rest/internal/db"
	"github.com/leozw/pdns-rest/internal/logging"
	"github.com/leozw/pdns-rest/internal/metrics"
	"github.com/leozw/pdns-rest/internal/storage/memory"
	"github.com/leozw/pdns-rest/internal/zones"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger := logging.New(cfg.Log)
	defer logger.Sync()

	store, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open store", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer closeStore()

	// API Server
	server := api.NewServer(cfg, store, logger, metrics.NewCollector())

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("API server started", zap.String("port", cfg.Server.Port), zap.String("driver", cfg.Database.Driver))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("Server exited")
}

func openStore(cfg *config.Config, logger *zap.Logger) (zones.Store, func() error, error) {
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("using in-memory store, data is lost on restart")
		store := memory.NewStore()
		return store, store.Close, nil
	}

	if cfg.Database.AutoMigrate {
		if err := migrate(cfg.Database, logger); err != nil {
			return nil, nil, err
		}
	}

	conn, err := db.NewConnection(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	repo := db.NewRepository(conn)
	return repo, repo.Close, nil
}

func migrate(cfg config.DatabaseConfig, logger *zap.Logger) error {
	m, err := db.NewMigrator(cfg)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		return err
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	logger.Info("database migrated", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
