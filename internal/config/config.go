package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	DataDir  string
	DBPath   string
	BlobRoot string

	QdrantURL string

	EmbeddingProvider  string // "openai" or "ollama"
	EmbeddingBaseURL   string
	EmbeddingModel     string
	EmbeddingAPIKey    string
	EmbeddingDimension int
	EmbeddingTimeout   time.Duration

	SweepDelay    time.Duration
	SweepInterval time.Duration
	AvatarPath    string

	APIPort   string
	LogLevel  slog.Level
	LogFormat string // "text" or "json"
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or a parent directory, it is loaded first;
// variables already set in the environment take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	dataDir := getEnv("DATA_DIR", "./data")
	provider := strings.ToLower(getEnv("EMBEDDING_PROVIDER", "ollama"))

	cfg := &Config{
		DataDir:           dataDir,
		DBPath:            getEnv("DB_PATH", filepath.Join(dataDir, "dome.db")),
		BlobRoot:          getEnv("BLOB_ROOT", filepath.Join(dataDir, "files")),
		QdrantURL:         getEnv("QDRANT_URL", "http://localhost:6333"),
		EmbeddingProvider: provider,
		EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", defaultEmbeddingURL(provider)),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		EmbeddingAPIKey:   getEnv("EMBEDDING_API_KEY", ""),
		AvatarPath:        getEnv("AVATAR_PATH", ""),
		APIPort:           getEnv("API_PORT", "9000"),
		LogFormat:         strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	switch cfg.EmbeddingProvider {
	case "openai", "ollama":
	default:
		return nil, fmt.Errorf("EMBEDDING_PROVIDER must be openai or ollama, got %q", cfg.EmbeddingProvider)
	}

	// The dimension is only the initial declaration for empty vector tables; a model
	// producing another length triggers a table migration at insert time.
	dim, err := strconv.Atoi(getEnv("EMBEDDING_DIMENSION", "768"))
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_DIMENSION must be a valid integer: %w", err)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("EMBEDDING_DIMENSION must be greater than 0")
	}
	cfg.EmbeddingDimension = dim

	if cfg.EmbeddingTimeout, err = getDuration("EMBEDDING_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SweepDelay, err = getDuration("SWEEP_DELAY", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SweepInterval, err = getDuration("SWEEP_INTERVAL", 6*time.Hour); err != nil {
		return nil, err
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func defaultEmbeddingURL(provider string) string {
	if provider == "openai" {
		return "http://localhost:8081"
	}
	return "http://localhost:11434"
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", s)
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}
