package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/uqregistry/admissions-tracker/internal/common"
	"github.com/uqregistry/admissions-tracker/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.ValidateDatabase(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client, err := repository.Open(ctx, repository.Config{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		PingTimeout:    cfg.Database.PingTimeout,
	}, logger)
	if err != nil {
		logger.Error("db health: FAIL", "error", err)
		os.Exit(1)
	}
	defer repository.Close(client, logger)

	if err := repository.HealthCheck(ctx, client, cfg.Database.PingTimeout, logger); err != nil {
		logger.Error("db health: FAIL", "error", err)
		os.Exit(1)
	}
	logger.Info("db health: OK")

	repo := repository.NewAdmissionRepository(client, cfg.Database.Database, cfg.Database.Collection, logger)
	n, err := repo.Count(ctx)
	if err != nil {
		logger.Error("counting admissions", "error", err)
		os.Exit(1)
	}
	logger.Info("admissions in collection",
		"database", cfg.Database.Database,
		"collection", cfg.Database.Collection,
		"count", n,
	)
}
