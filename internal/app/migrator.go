package app

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Migrator wraps goose over the application pool
type Migrator struct {
	db     *sql.DB
	dir    string
	logger *zap.Logger
}

// NewMigrator creates a migrator reading SQL files from fsys
func NewMigrator(pool *pgxpool.Pool, fsys fs.FS, logger *zap.Logger) (*Migrator, error) {
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	goose.SetBaseFS(fsys)

	// Goose работает с *sql.DB, поэтому создаём его из конфига пула
	db := stdlib.OpenDBFromPool(pool)

	return &Migrator{
		db:     db,
		dir:    ".",
		logger: logger,
	}, nil
}

// Run applies all pending migrations
func (mg *Migrator) Run(ctx context.Context) error {
	mg.logger.Info("Applying database migrations")

	if err := goose.UpContext(ctx, mg.db, mg.dir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := mg.Version(ctx)
	if err != nil {
		return err
	}

	mg.logger.Info("Migrations applied", zap.Int64("version", version))
	return nil
}

// Version returns the current schema version
func (mg *Migrator) Version(ctx context.Context) (int64, error) {
	version, err := goose.GetDBVersionContext(ctx, mg.db)
	if err != nil {
		return 0, fmt.Errorf("get version: %w", err)
	}
	return version, nil
}

// Close closes the sql.DB handle, the pool itself is owned by the caller
func (mg *Migrator) Close() error {
	if mg.db != nil {
		return mg.db.Close()
	}
	return nil
}
