package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Queue    QueueConfig
	Worker   WorkerConfig
	LLM      LLMConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// QueueConfig holds the redis queue configuration
type QueueConfig struct {
	RedisURL    string
	Key         string
	PopTimeout  time.Duration
	DialTimeout time.Duration
}

// WorkerConfig holds pipeline tuning knobs
type WorkerConfig struct {
	ConfidenceThreshold float64
	ExtractionMode      string
	UploadDir           string
}

// LLMConfig holds model-backed extraction configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 5),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Queue: QueueConfig{
			RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
			Key:         getEnv("QUEUE_KEY", "queue:document-ingest"),
			PopTimeout:  getEnvAsDuration("QUEUE_POP_TIMEOUT", 5*time.Second),
			DialTimeout: getEnvAsDuration("REDIS_DIAL_TIMEOUT", 3*time.Second),
		},
		Worker: WorkerConfig{
			ConfidenceThreshold: getEnvAsFloat64("CONFIDENCE_THRESHOLD", 0.7),
			ExtractionMode:      getEnv("EXTRACTION_MODE", "row"),
			UploadDir:           getEnv("UPLOAD_DIR", "../uploads"),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Queue.RedisURL == "" {
		return NewAppError("CONFIG_ERROR", "REDIS_URL is required", ErrInvalidInput)
	}
	if c.Queue.Key == "" {
		return NewAppError("CONFIG_ERROR", "QUEUE_KEY is required", ErrInvalidInput)
	}
	if c.Worker.ConfidenceThreshold < 0 || c.Worker.ConfidenceThreshold > 1 {
		return NewAppError("CONFIG_ERROR", "CONFIDENCE_THRESHOLD must be within [0,1]", ErrInvalidInput)
	}
	return nil
}
