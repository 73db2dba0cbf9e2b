package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/recall-api/internal/config"
	"github.com/phrazzld/recall-api/internal/platform/logger"
	"github.com/phrazzld/recall-api/internal/platform/postgres"
)

// loadConfig reads configuration and builds the logger every command uses.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	level := cfg.Server.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log, err := logger.Setup(logger.LoggerConfig{Level: level, Output: os.Stderr})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	return cfg, log, nil
}

func openDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	return postgres.Open(ctx, cfg.Database, log)
}
