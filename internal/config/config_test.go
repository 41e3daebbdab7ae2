package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("MAX_ATTEMPTS", "")
	t.Setenv("MODEL_MAX_TOKENS", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxAttempts != 3 || cfg.RetryDelayMS != 50 {
		t.Fatalf("unexpected retry defaults: %d %d", cfg.MaxAttempts, cfg.RetryDelayMS)
	}
	if cfg.ModelMaxTokens != 1000 || cfg.ModelTimeoutMinutes != 5 {
		t.Fatalf("unexpected model defaults: %d %d", cfg.ModelMaxTokens, cfg.ModelTimeoutMinutes)
	}
	if cfg.DBDriver != "sqlite" {
		t.Fatalf("expected sqlite default, got %q", cfg.DBDriver)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("unexpected cors default: %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadFallsBackOnUnparsableNumbers(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("MAX_ATTEMPTS", "three")
	t.Setenv("BREAKER_ENABLED", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxAttempts != 3 {
		t.Fatalf("expected fallback attempts 3, got %d", cfg.MaxAttempts)
	}
	if cfg.BreakerEnabled {
		t.Fatalf("expected breaker disabled on invalid value")
	}
}

func TestLoadLayersFileUnderEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	body := []byte(`
model:
  name: vision-large
  max_tokens: 2048
blob_files_url: https://files.example.com/
cors_allowed_origins:
  - https://a.example.com
  - https://b.example.com
max_attempts: 5
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	t.Setenv(FileEnv, path)
	t.Setenv("MODEL_NAME", "")
	t.Setenv("MODEL_MAX_TOKENS", "")
	t.Setenv("BLOB_FILES_URL", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("MAX_ATTEMPTS", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ModelName != "vision-large" || cfg.ModelMaxTokens != 2048 {
		t.Fatalf("expected nested file values, got %q %d", cfg.ModelName, cfg.ModelMaxTokens)
	}
	if cfg.BlobFilesURL != "https://files.example.com/" {
		t.Fatalf("unexpected files url %q", cfg.BlobFilesURL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.MaxAttempts != 7 {
		t.Fatalf("expected environment to win, got %d", cfg.MaxAttempts)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing settings file")
	}
}
