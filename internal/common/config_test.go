package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/docpipe")

	cfg := LoadConfig()
	assert.Equal(t, "queue:document-ingest", cfg.Queue.Key)
	assert.Equal(t, 5*time.Second, cfg.Queue.PopTimeout)
	assert.Equal(t, 0.7, cfg.Worker.ConfidenceThreshold)
	assert.Equal(t, "row", cfg.Worker.ExtractionMode)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/docpipe")
	t.Setenv("QUEUE_KEY", "queue:custom")
	t.Setenv("CONFIDENCE_THRESHOLD", "0.55")
	t.Setenv("QUEUE_POP_TIMEOUT", "10s")

	cfg := LoadConfig()
	assert.Equal(t, "queue:custom", cfg.Queue.Key)
	assert.Equal(t, 0.55, cfg.Worker.ConfidenceThreshold)
	assert.Equal(t, 10*time.Second, cfg.Queue.PopTimeout)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate(), "DSN is required")

	cfg = &Config{
		Database: DatabaseConfig{DSN: "postgres://localhost/docpipe"},
		Queue:    QueueConfig{RedisURL: "redis://localhost:6379", Key: "q"},
		Worker:   WorkerConfig{ConfidenceThreshold: 1.5},
	}
	assert.Error(t, cfg.Validate(), "threshold out of range")
}
