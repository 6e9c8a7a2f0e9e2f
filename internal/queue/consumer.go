package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Message is the queue payload the upstream producer enqueues after it has
// created the job and document rows.
type Message struct {
	JobID      string `json:"jobId"`
	DocumentID string `json:"documentId"`
}

// JobProcessor is what the consumer dispatches to; satisfied by
// pipeline.Processor.
type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID, documentID string) error
}

// Consumer is the worker's driving loop: block on the list for one message,
// process it synchronously, repeat. Exclusion across worker instances is
// the job row lock's problem, not ours; a single consumer never runs two
// jobs concurrently.
type Consumer struct {
	rdb        *redis.Client
	proc       JobProcessor
	logger     *slog.Logger
	key        string
	popTimeout time.Duration
}

func NewConsumer(rdb *redis.Client, proc JobProcessor, logger *slog.Logger, key string, popTimeout time.Duration) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	if popTimeout <= 0 {
		popTimeout = 5 * time.Second
	}
	return &Consumer{
		rdb:        rdb,
		proc:       proc,
		logger:     logger,
		key:        key,
		popTimeout: popTimeout,
	}
}

// Run loops until ctx is canceled. A malformed message or a processing
// error is logged and the loop continues; one bad message must never take
// the consumer down.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("worker.loop.started", "queue_key", c.key, "pop_timeout", c.popTimeout)
	for {
		if err := ctx.Err(); err != nil {
			c.logger.Info("worker.loop.stopped")
			return err
		}

		res, err := c.rdb.BRPop(ctx, c.popTimeout, c.key).Result()
		if errors.Is(err, redis.Nil) {
			// Idle poll point, not an error.
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("worker.loop.stopped")
				return ctx.Err()
			}
			c.logger.Error("worker.loop.pop_error", "error", err)
			continue
		}
		if len(res) != 2 {
			c.logger.Error("worker.loop.unexpected_pop_shape", "elements", len(res))
			continue
		}

		c.Handle(ctx, []byte(res[1]))
	}
}

// Handle decodes one payload and runs it through the processor. Split out
// from Run so the dispatch path is testable without redis.
func (c *Consumer) Handle(ctx context.Context, payload []byte) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Error("worker.loop.bad_payload", "error", err, "payload_bytes", len(payload))
		return
	}
	if msg.JobID == "" || msg.DocumentID == "" {
		c.logger.Error("worker.loop.incomplete_payload", "job_id", msg.JobID, "document_id", msg.DocumentID)
		return
	}

	start := time.Now()
	if err := c.proc.ProcessJob(ctx, msg.JobID, msg.DocumentID); err != nil {
		// The attempt rolled back; redelivery will retry it.
		c.logger.Error("worker.loop.process_failed",
			"job_id", msg.JobID,
			"document_id", msg.DocumentID,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	c.logger.Debug("worker.loop.processed",
		"job_id", msg.JobID,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}
