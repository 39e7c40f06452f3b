package config

import (
	"fmt"
	"os"
	"strconv"
)

// Defaults for optional settings.
const (
	DefaultEmbedURL        = "http://localhost:8291"
	DefaultEmbedModel      = "ViT-B-32"
	DefaultEmbedPretrained = "laion2b_s34b_b79k"
	DefaultEmbeddingDim    = 512
	DefaultCollection      = "feeds_clips_1000"
	DefaultFlushEvery      = 64
)

// Config holds the application configuration loaded from the environment.
type Config struct {
	MilvusAddr      string
	MilvusAPIKey    string
	EmbedURL        string
	EmbedModel      string
	EmbedPretrained string
	EmbeddingDim    int
	Collection      string
	FlushEvery      int
	TelegramToken   string
	AdminUserIDs    string
	AllowedUserIDs  string
}

// FromEnv builds a Config from environment variables. The index-store
// endpoint and credential are required; their absence is a startup error.
func FromEnv() (*Config, error) {
	cfg := &Config{
		MilvusAddr:      os.Getenv("MILVUS_ADDR"),
		MilvusAPIKey:    os.Getenv("MILVUS_API_KEY"),
		EmbedURL:        getEnvWithDefault("EMBED_URL", DefaultEmbedURL),
		EmbedModel:      getEnvWithDefault("EMBED_MODEL", DefaultEmbedModel),
		EmbedPretrained: getEnvWithDefault("EMBED_PRETRAINED", DefaultEmbedPretrained),
		EmbeddingDim:    getEnvIntWithDefault("EMBEDDING_DIM", DefaultEmbeddingDim),
		Collection:      getEnvWithDefault("COLLECTION", DefaultCollection),
		FlushEvery:      getEnvIntWithDefault("FLUSH_EVERY", DefaultFlushEvery),
		TelegramToken:   os.Getenv("TG_BOT_TOKEN"),
		AdminUserIDs:    os.Getenv("ADMIN_USER_IDS"),
		AllowedUserIDs:  os.Getenv("ALLOWED_USER_IDS"),
	}

	if cfg.MilvusAddr == "" {
		return nil, fmt.Errorf("MILVUS_ADDR environment variable is required")
	}
	if cfg.MilvusAPIKey == "" {
		return nil, fmt.Errorf("MILVUS_API_KEY environment variable is required")
	}
	if cfg.EmbeddingDim <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIM must be a positive integer")
	}
	if cfg.FlushEvery <= 0 {
		return nil, fmt.Errorf("FLUSH_EVERY must be a positive integer")
	}

	return cfg, nil
}

// getEnvWithDefault gets an environment variable or returns a default value.
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvIntWithDefault gets an integer environment variable or returns a
// default value. A malformed value falls back to the default.
func getEnvIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
