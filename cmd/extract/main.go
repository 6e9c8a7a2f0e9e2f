package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/project-compass/docpipe/internal/common"
	"github.com/project-compass/docpipe/internal/doctext"
	"github.com/project-compass/docpipe/internal/entity"
	"github.com/project-compass/docpipe/internal/extract"
	"github.com/project-compass/docpipe/internal/extract/openai"
	"github.com/project-compass/docpipe/internal/pipeline"
	"github.com/project-compass/docpipe/internal/utils"
)

// Offline runner: extract, normalize and validate a local file without a
// database or queue. Handy for tuning the heuristic patterns against real
// schedules.
func main() {
	threshold := flag.Float64("threshold", 0.7, "confidence threshold for validation")
	useLLM := flag.Bool("llm", false, "use the model-backed extractor when OPENAI_API_KEY is set")
	flag.Parse()

	if flag.NArg() != 1 {
		slog.Error("usage: extract [-threshold 0.7] [-llm] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx := context.Background()

	loader := doctext.NewFileLoader("", logger)
	text, err := loader.Load(ctx, path)
	if err != nil {
		logger.Error("failed to load document text", "path", path, "error", err)
		os.Exit(1)
	}

	heuristic := extract.NewHeuristic(logger)
	var extractor extract.RowExtractor = heuristic
	if *useLLM {
		cfg := common.LoadConfig()
		if !openai.Configured(cfg.LLM.APIKey) {
			logger.Error("OPENAI_API_KEY is not set; cannot use -llm")
			os.Exit(2)
		}
		llm := openai.NewClient(openai.Config{
			Model:       cfg.LLM.Model,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		extractor = extract.NewFallback(llm, heuristic, logger)
	}

	documentID := utils.NewID("doc")
	filename := filepath.Base(path)
	raws, err := extractor.Extract(ctx, extract.Request{
		DocumentID: documentID,
		Filename:   filename,
		Text:       extract.NormalizeText(text),
	})
	if err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	type result struct {
		Row    entity.TaskRow `json:"row"`
		Issues []string       `json:"issues,omitempty"`
	}
	now := time.Now().UTC()
	results := make([]result, 0, len(raws))
	for _, raw := range raws {
		row := pipeline.Normalize(raw, documentID, filename, now)
		results = append(results, result{
			Row:    row,
			Issues: pipeline.Validate(row, *threshold),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		logger.Error("encoding output", "error", err)
		os.Exit(1)
	}
}
