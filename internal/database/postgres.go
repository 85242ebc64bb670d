package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const connectAttempts = 10

func NewPool(ctx context.Context, databaseURL string, log *zap.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 20
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	// Postgres may still be starting when the server comes up.
	var pool *pgxpool.Pool
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			log.Warn("database connect failed", zap.Int("attempt", attempt), zap.Error(err))
			if !sleep(ctx, 2*time.Second) {
				return nil, ctx.Err()
			}
			continue
		}
		if err = pool.Ping(ctx); err != nil {
			pool.Close()
			log.Warn("database ping failed", zap.Int("attempt", attempt), zap.Error(err))
			if !sleep(ctx, 2*time.Second) {
				return nil, ctx.Err()
			}
			continue
		}
		log.Info("database connected", zap.Int("attempt", attempt))
		return pool, nil
	}

	return nil, fmt.Errorf("failed to connect after %d attempts: %w", connectAttempts, err)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
