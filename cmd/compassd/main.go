package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/project-compass/docpipe/internal/common"
	"github.com/project-compass/docpipe/internal/doctext"
	"github.com/project-compass/docpipe/internal/extract"
	"github.com/project-compass/docpipe/internal/extract/openai"
	"github.com/project-compass/docpipe/internal/notify"
	"github.com/project-compass/docpipe/internal/pipeline"
	"github.com/project-compass/docpipe/internal/queue"
	repo "github.com/project-compass/docpipe/internal/repository"
)

func main() {
	// Setup structured logger that outputs messages with variables but no time/level
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repo.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(pool, logger)

	if err := repo.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := repo.EnsureSchema(ctx, pool, logger); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	redisOpts, err := redis.ParseURL(cfg.Queue.RedisURL)
	if err != nil {
		logger.Error("invalid REDIS_URL", "error", err)
		os.Exit(2)
	}
	redisOpts.DialTimeout = cfg.Queue.DialTimeout
	rdb := redis.NewClient(redisOpts)
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("closing redis client", "error", err)
		}
	}()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("failed to ping redis", "error", err)
		os.Exit(1)
	}

	// Heuristic extraction always works; the model-backed strategy is layered
	// on top only when a real API key is present, with the heuristic as its
	// fallback.
	heuristic := extract.NewHeuristic(logger)
	var extractor extract.RowExtractor = heuristic
	if openai.Configured(cfg.LLM.APIKey) {
		llm := openai.NewClient(openai.Config{
			Model:       cfg.LLM.Model,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
		extractor = extract.NewFallback(llm, heuristic, logger)
		logger.Info("extraction strategy", "primary", "openai", "model", cfg.LLM.Model)
	} else {
		logger.Info("extraction strategy", "primary", "heuristic")
	}

	processor := pipeline.NewProcessor(
		logger,
		repo.NewStore(pool, logger),
		doctext.NewFileLoader(cfg.Worker.UploadDir, logger),
		extractor,
		notify.NewLogStub(logger),
		pipeline.Config{
			ConfidenceThreshold: cfg.Worker.ConfidenceThreshold,
			ExtractionMode:      cfg.Worker.ExtractionMode,
		},
	)

	consumer := queue.NewConsumer(rdb, processor, logger, cfg.Queue.Key, cfg.Queue.PopTimeout)

	logger.Info("compassd started", "queue_key", cfg.Queue.Key)
	if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("compassd shut down")
}
