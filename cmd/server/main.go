package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"talon/internal/config"
	"talon/internal/repository"
	"talon/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// .env is optional; real environment variables win
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig(config.Path())
	if err != nil {
		bootstrap, _ := zap.NewProduction()
		bootstrap.Fatal("Failed to load config", zap.Error(err))
	}

	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()
	if envErr != nil && !os.IsNotExist(envErr) {
		logger.Warn("Failed to load .env file", zap.Error(envErr))
	}

	if cfg.Database.Type == repository.DriverSQLite {
		// Create data directory if not exists
		if err := os.MkdirAll("./data", 0o755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
	}

	// Database connection
	db, err := repository.NewDB(cfg.Database.Type, cfg.Database.URL, cfg.Database.MaxOpenConns, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := repository.MigrateDB(db, logger); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}

	if !cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	accessLog := logrus.New()
	accessLog.SetFormatter(&logrus.JSONFormatter{})
	accessLog.SetOutput(os.Stdout)

	srv, err := server.NewServer(db, cfg, logger, accessLog)
	if err != nil {
		logger.Fatal("Failed to initialize server", zap.Error(err))
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := srv.Run(ctx); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return
	}
	logger.Info("Application stopped.")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	if cfg.Log.Development {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
