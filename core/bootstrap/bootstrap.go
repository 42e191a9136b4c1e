// Package bootstrap runs the startup pipeline: logger, database,
// migrations, seed data.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/zhukata/shopbot/core/config"
	coredatabase "github.com/zhukata/shopbot/core/database"
	"github.com/zhukata/shopbot/core/logger"
)

// Seeder loads reference data after migrations have been applied.
// Seeders must be idempotent; they run on every start.
type Seeder interface {
	Seed(ctx context.Context, db *sqlx.DB) error
}

// SeederFunc adapts a function to Seeder.
type SeederFunc func(ctx context.Context, db *sqlx.DB) error

func (f SeederFunc) Seed(ctx context.Context, db *sqlx.DB) error { return f(ctx, db) }

// Options parameterizes Run. The function fields exist for tests and
// default to the real implementations.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	Seeders  []Seeder

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

// Result holds the infrastructure the pipeline produced.
type Result struct {
	DB *sqlx.DB
}

// Run executes the pipeline in order and closes the pool again if any
// later step fails.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	loggerInit, connect, migrate := opts.LoggerInit, opts.Connect, opts.Migrate
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if connect == nil {
		connect = coredatabase.Connect
	}
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}

	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	db, err := connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	if err := migrate(opts.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	if err := runSeeders(db, opts.Seeders); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Result{DB: db}, nil
}

func runSeeders(db *sqlx.DB, seeders []Seeder) error {
	for i, s := range seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		if err := s.Seed(context.Background(), db); err != nil {
			return fmt.Errorf("bootstrap: seeding failed: %w", err)
		}
		logger.SEED.Debug("seeder done",
			slog.String("event", "seed.step"),
			slog.Int("index", i),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
	}
	return nil
}
