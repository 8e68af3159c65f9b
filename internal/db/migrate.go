package db

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema migrations to the pool's database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	sqlDB := stdlib.OpenDBFromPool(pool)
	defer sqlDB.Close()

	goose.SetBaseFS(migrations)

	err := goose.SetDialect("postgres")
	if err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	err = goose.UpContext(ctx, sqlDB, "migrations")
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
