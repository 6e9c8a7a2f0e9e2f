package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/project-compass/docpipe/internal/common"
	"github.com/project-compass/docpipe/internal/export"
	repo "github.com/project-compass/docpipe/internal/repository"
)

// Writes an XLSX workbook of a document's extracted task rows.
func main() {
	out := flag.String("o", "", "output path (default <document-id>.xlsx)")
	flag.Parse()

	if flag.NArg() != 1 {
		slog.Error("usage: export [-o out.xlsx] <document-id>")
		os.Exit(2)
	}
	documentID := flag.Arg(0)
	if *out == "" {
		*out = documentID + ".xlsx"
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		logger.Error("DB_URL env var is required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := repo.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(pool, logger)

	svc := export.NewService(repo.NewQueries(pool, logger), logger)
	data, err := svc.ExportTaskRowsXLSX(ctx, documentID)
	if err != nil {
		logger.Error("export failed", "document_id", documentID, "error", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		logger.Error("writing output file", "path", *out, "error", err)
		os.Exit(1)
	}
	logger.Info("export written", "path", *out, "bytes", len(data))
}
