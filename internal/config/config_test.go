package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
builder:
  interval: 6h
  freshness_window: 72h
  request_timeout: 10s
  history_limit: 5
registry:
  size_api: https://sizes.example.com
storage:
  path: ` + filepath.Join(dir, "data") + `
suggestions:
  path: ` + filepath.Join(dir, "suggestions.yaml") + `
log:
  level: debug
  filename: ` + filepath.Join(dir, "logs", "test.log") + `
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Builder.FreshnessWindow != 72*time.Hour {
		t.Errorf("freshness window = %v", cfg.Builder.FreshnessWindow)
	}
	if cfg.Builder.HistoryLimit != 5 {
		t.Errorf("history limit = %d", cfg.Builder.HistoryLimit)
	}
	if cfg.Registry.SizeAPI != "https://sizes.example.com" {
		t.Errorf("size api = %s", cfg.Registry.SizeAPI)
	}

	// unset values get defaults
	if cfg.Builder.RPS == 0 || cfg.Builder.Burst == 0 {
		t.Error("builder throttle defaults not applied")
	}
	if cfg.RateLimit.RPS == 0 {
		t.Error("rate limit defaults not applied")
	}

	if _, err := os.Stat(cfg.Storage.Path); err != nil {
		t.Errorf("storage dir not created: %v", err)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config")
	}
}
