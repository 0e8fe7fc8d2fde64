package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/bimakw/coin-portfolio/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies all pending schema migrations
func (d *DB) Migrate(ctx context.Context) error {
	dialect := "postgres"
	if d.driver == config.DriverSQLite {
		dialect = "sqlite3"
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, d.db.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, d.db.DB)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	d.logger.Info("Database schema up to date", zap.Int64("version", version))
	return nil
}
