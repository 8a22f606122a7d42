package repository

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Config struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	PingTimeout    time.Duration
}

// Open connects to MongoDB and verifies the connection with a ping. A failure
// here is fatal for the whole session; callers report it once and stop.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*mongo.Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to mongodb", "uri", cfg.URI, "database", cfg.Database)

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetAppName("admissions-tracker")

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		logger.Error("failed to connect to mongodb", "error", err)
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		logger.Error("mongodb ping failed", "error", err)
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Info("successfully connected to mongodb")
	return client, nil
}

// Close disconnects gracefully.
func Close(client *mongo.Client, logger *slog.Logger) {
	if client == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("closing mongodb connection")
	if err := client.Disconnect(context.Background()); err != nil {
		logger.Error("failed to close mongodb connection", "error", err)
		return
	}
	logger.Info("mongodb connection closed")
}

// HealthCheck pings the server, bounded by timeout.
func HealthCheck(ctx context.Context, client *mongo.Client, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("pinging mongodb")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return err
	}
	logger.Debug("mongodb ping successful")
	return nil
}
