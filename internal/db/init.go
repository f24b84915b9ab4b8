// Package db opens the PostgreSQL connection, applies schema migrations and
// runs background maintenance.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/ExpenseKeeper/internal/db/migrations"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

// ErrResetRefused is returned by Reset when the environment or the caller
// did not allow dropping the schema.
var ErrResetRefused = errors.New("reset refused")

// ProductionEnv is the environment name in which Reset never runs.
const ProductionEnv = "production"

// Seams for goose so migration flow can be tested without a database.
var (
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.UpContext(ctx, db, dir, opts...)
	}
	gooseResetContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return goose.ResetContext(ctx, db, dir, opts...)
	}
)

// InitPostgres opens and pings the database, then brings the schema up to date.
func InitPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func setupGoose() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return nil
}

// Migrate applies all pending embedded migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Reset rolls back every migration and applies them again, dropping all
// data. It refuses to run in production and unless force is set.
func Reset(ctx context.Context, db *sql.DB, env string, force bool) error {
	if env == ProductionEnv {
		return fmt.Errorf("%w: environment is %s", ErrResetRefused, ProductionEnv)
	}
	if !force {
		return fmt.Errorf("%w: -force not given", ErrResetRefused)
	}
	if err := setupGoose(); err != nil {
		return err
	}
	if err := gooseResetContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate reset: %w", err)
	}
	return Migrate(ctx, db)
}
