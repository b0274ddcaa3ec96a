package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 9000
model:
  id: "gpt-4o"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Model.ID != "gpt-4o" {
		t.Errorf("model id not honored: %q", cfg.Model.ID)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_defaults(t *testing.T) {
	path := writeConfig(t, "debug: true\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
	if cfg.Model.ID != "gpt-4o-mini" {
		t.Errorf("default model id: got %q", cfg.Model.ID)
	}
	if got := cfg.Model.TemperatureOrDefault(); got != 0.4 {
		t.Errorf("default temperature: got %v", got)
	}
	if cfg.Limits.MaxChars != 100000 || cfg.Limits.WarningChars != 80000 {
		t.Errorf("default limits: %+v", cfg.Limits)
	}
	if cfg.Model.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("default api key env: %q", cfg.Model.APIKeyEnv)
	}
	if cfg.Storage.DatabasePath != "" {
		t.Errorf("archive should be disabled by default, got %q", cfg.Storage.DatabasePath)
	}
}

func TestLoad_explicitZeroTemperature(t *testing.T) {
	path := writeConfig(t, `
model:
  temperature: 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Model.TemperatureOrDefault(); got != 0 {
		t.Errorf("explicit 0 temperature overridden: got %v", got)
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: "./data/transcripts.db"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(filepath.Dir(path), "data/transcripts.db")
	if cfg.Storage.DatabasePath != want {
		t.Errorf("database_path = %q, want %q", cfg.Storage.DatabasePath, want)
	}
}

func TestLoad_missingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestAPIKey(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Model.APIKeyEnv = "OSHIETE_TEST_KEY"

	t.Run("missing", func(t *testing.T) {
		t.Setenv("OSHIETE_TEST_KEY", "")
		if _, err := cfg.APIKey(); err == nil {
			t.Error("expected error when credential is unset")
		}
	})

	t.Run("present", func(t *testing.T) {
		t.Setenv("OSHIETE_TEST_KEY", "sk-test")
		key, err := cfg.APIKey()
		if err != nil {
			t.Fatalf("APIKey: %v", err)
		}
		if key != "sk-test" {
			t.Errorf("got %q", key)
		}
	})
}
