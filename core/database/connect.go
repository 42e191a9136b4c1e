// Package database owns the Postgres connection pool and schema
// migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/zhukata/shopbot/core/logger"
)

const connectTimeout = 5 * time.Second

// Connect opens the pool, pings it, and applies the pool limits from
// config.
func Connect(cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	took := time.Since(start)
	if err != nil {
		logger.DB.Error("db connect failed", connAttrs(cfg, took,
			slog.String("err", err.Error()))...)
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		logger.DB.Error("db ping failed", connAttrs(cfg, took,
			slog.String("err", err.Error()))...)
		return nil, fmt.Errorf("db ping: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	logger.DB.Info("db connected", connAttrs(cfg, took,
		slog.Int("pool_open", cfg.MaxConnections))...)
	return db, nil
}

func connAttrs(cfg Config, took time.Duration, extra ...slog.Attr) []any {
	args := []any{
		slog.String("event", "db.connect"),
		slog.String("driver", "postgres"),
		slog.String("host", cfg.Host),
		slog.String("port", cfg.Port),
		slog.String("db", cfg.Name),
		slog.Duration("duration", logger.RoundMS(took)),
	}
	for _, a := range extra {
		args = append(args, a)
	}
	return args
}

// WaitForPostgres polls the database until it accepts connections or
// the timeout elapses. Used before migrations so the bot can start
// together with its database container.
func WaitForPostgres(dsn string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			err = db.Ping()
			_ = db.Close()
			if err == nil {
				return nil
			}
		}
		lastErr = err
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout reached waiting for database: %w", lastErr)
		}
		time.Sleep(2 * time.Second)
	}
}
