package repository

import (
	"context"
	_ "embed"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/project-compass/docpipe/internal/common"
)

//go:embed schema.sql
var schemaDDL string

// EnsureSchema applies the idempotent DDL. Safe to run on every startup;
// deployments that migrate externally can skip it.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		logger.Error("schema apply failed", "error", err)
		return common.WrapError(err, "ensure schema")
	}
	logger.Info("schema ensured")
	return nil
}
