package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envVars = []string{
	"DATA_DIR", "DB_PATH", "BLOB_ROOT", "QDRANT_URL",
	"EMBEDDING_PROVIDER", "EMBEDDING_BASE_URL", "EMBEDDING_MODEL", "EMBEDDING_API_KEY",
	"EMBEDDING_DIMENSION", "EMBEDDING_TIMEOUT",
	"SWEEP_DELAY", "SWEEP_INTERVAL", "AVATAR_PATH",
	"API_PORT", "LOG_LEVEL", "LOG_FORMAT",
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantErr     bool
		checkConfig func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.EmbeddingProvider != "ollama" {
					t.Errorf("EmbeddingProvider = %q, want ollama", cfg.EmbeddingProvider)
				}
				if cfg.EmbeddingBaseURL != "http://localhost:11434" {
					t.Errorf("EmbeddingBaseURL = %q", cfg.EmbeddingBaseURL)
				}
				if cfg.EmbeddingDimension != 768 {
					t.Errorf("EmbeddingDimension = %d, want 768", cfg.EmbeddingDimension)
				}
				if cfg.SweepDelay != 5*time.Minute {
					t.Errorf("SweepDelay = %v, want 5m", cfg.SweepDelay)
				}
				if cfg.LogLevel != slog.LevelInfo {
					t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
				}
				if filepath.Base(cfg.DBPath) != "dome.db" {
					t.Errorf("DBPath = %q, want .../dome.db", cfg.DBPath)
				}
				if cfg.APIPort != "9000" {
					t.Errorf("APIPort = %q, want 9000", cfg.APIPort)
				}
			},
		},
		{
			name: "openai provider default url",
			env:  map[string]string{"EMBEDDING_PROVIDER": "OpenAI"},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.EmbeddingProvider != "openai" || cfg.EmbeddingBaseURL != "http://localhost:8081" {
					t.Errorf("provider = %q url = %q", cfg.EmbeddingProvider, cfg.EmbeddingBaseURL)
				}
			},
		},
		{
			name: "custom values",
			env: map[string]string{
				"EMBEDDING_DIMENSION": "1024",
				"SWEEP_INTERVAL":      "0s",
				"LOG_LEVEL":           "debug",
				"LOG_FORMAT":          "json",
				"AVATAR_PATH":         "images/avatar.png",
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.EmbeddingDimension != 1024 {
					t.Errorf("EmbeddingDimension = %d, want 1024", cfg.EmbeddingDimension)
				}
				if cfg.SweepInterval != 0 {
					t.Errorf("SweepInterval = %v, want 0", cfg.SweepInterval)
				}
				if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
					t.Errorf("log = %v/%s", cfg.LogLevel, cfg.LogFormat)
				}
				if cfg.AvatarPath != "images/avatar.png" {
					t.Errorf("AvatarPath = %q", cfg.AvatarPath)
				}
			},
		},
		{name: "unknown provider", env: map[string]string{"EMBEDDING_PROVIDER": "cohere"}, wantErr: true},
		{name: "invalid dimension", env: map[string]string{"EMBEDDING_DIMENSION": "abc"}, wantErr: true},
		{name: "zero dimension", env: map[string]string{"EMBEDDING_DIMENSION": "0"}, wantErr: true},
		{name: "invalid duration", env: map[string]string{"SWEEP_DELAY": "soon"}, wantErr: true},
		{name: "negative duration", env: map[string]string{"EMBEDDING_TIMEOUT": "-1s"}, wantErr: true},
		{name: "invalid log level", env: map[string]string{"LOG_LEVEL": "loud"}, wantErr: true},
		{name: "invalid log format", env: map[string]string{"LOG_FORMAT": "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Chdir(tmpDir)
			for _, key := range envVars {
				t.Setenv(key, "")
			}
			t.Setenv("DATA_DIR", filepath.Join(tmpDir, "data"))
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if _, err := os.Stat(filepath.Dir(cfg.DBPath)); err != nil {
				t.Errorf("data directory not created: %v", err)
			}
			if tt.checkConfig != nil {
				tt.checkConfig(t, cfg)
			}
		})
	}
}
