package mend

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, "mend.yaml", "partitioning: markdown\ndebounce: 500ms\nautosave: false\nsave_timeout: 3s\nerror_history: 5\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Partitioning != "markdown" {
		t.Errorf("expected partitioning 'markdown', got %q", cfg.Partitioning)
	}
	if time.Duration(cfg.Debounce) != 500*time.Millisecond {
		t.Errorf("expected debounce 500ms, got %v", time.Duration(cfg.Debounce))
	}
	if cfg.AutoSave == nil || *cfg.AutoSave {
		t.Error("expected autosave false")
	}
	if time.Duration(cfg.SaveTimeout) != 3*time.Second {
		t.Errorf("expected save timeout 3s, got %v", time.Duration(cfg.SaveTimeout))
	}
	if cfg.ErrorHistory != 5 {
		t.Errorf("expected error history 5, got %d", cfg.ErrorHistory)
	}
}

func TestLoadConfig_JSONKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "mend.json", `{"partitioning": "go"}`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Partitioning != "go" {
		t.Errorf("expected partitioning 'go', got %q", cfg.Partitioning)
	}
	if time.Duration(cfg.Debounce) != DefaultDebounce {
		t.Errorf("expected default debounce, got %v", time.Duration(cfg.Debounce))
	}
	if cfg.AutoSave == nil || !*cfg.AutoSave {
		t.Error("expected autosave to default to true")
	}
}

func TestLoadConfig_TOML(t *testing.T) {
	path := writeConfig(t, "mend.toml", "partitioning = \"java\"\ndebounce = \"1s\"\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Partitioning != "java" || time.Duration(cfg.Debounce) != time.Second {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestLoadConfig_ValidationFails(t *testing.T) {
	path := writeConfig(t, "mend.yaml", "partitioning: \"\"\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error for empty partitioning")
	}
}

func TestLoadConfig_NegativeErrorHistory(t *testing.T) {
	path := writeConfig(t, "mend.yaml", "partitioning: go\nerror_history: -1\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected validation error for negative error history")
	}
}

func TestLoadConfig_BadDuration(t *testing.T) {
	path := writeConfig(t, "mend.yaml", "partitioning: go\ndebounce: soon\n")

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	disabled := false
	cfg.AutoSave = &disabled
	cfg.Partitioning = "text"

	r, err := NewFromConfig(cfg, nil)
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if r.DocumentPartitioning() != "text" {
		t.Errorf("expected partitioning 'text', got %q", r.DocumentPartitioning())
	}
	if r.IsAutoSaveEnabled() {
		t.Error("expected autosave disabled")
	}
}

func TestNewFromConfig_Invalid(t *testing.T) {
	if _, err := NewFromConfig(Config{}, nil); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDuration_MarshalText(t *testing.T) {
	text, err := Duration(1500 * time.Millisecond).MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	if string(text) != "1.5s" {
		t.Errorf("expected '1.5s', got %q", text)
	}
}
