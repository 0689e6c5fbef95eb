package config

import (
	"os"
	"testing"
)

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CLAUDE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	isolateHome(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Models.Preferred != "gemini" {
		t.Errorf("expected gemini preferred by default, got %q", cfg.Models.Preferred)
	}
	if cfg.Source.Mode != "sqlite" {
		t.Errorf("expected sqlite source mode by default, got %q", cfg.Source.Mode)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	isolateHome(t)

	cfg := DefaultConfig()
	cfg.Source.Mode = "demo"
	cfg.Models.Preferred = "ollama"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Source.Mode != "demo" {
		t.Errorf("expected demo mode, got %q", loaded.Source.Mode)
	}
	if loaded.Models.Preferred != "ollama" {
		t.Errorf("expected ollama preferred, got %q", loaded.Models.Preferred)
	}
}

func TestSavePermissions(t *testing.T) {
	isolateHome(t)

	cfg := DefaultConfig()
	cfg.Models.Gemini.APIKey = "secret"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(ConfigPath())
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config holds API keys, expected 0600, got %o", perm)
	}
}

func TestAutoPopulateFromEnv(t *testing.T) {
	isolateHome(t)
	t.Setenv("GEMINI_API_KEY", "env-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Models.Gemini.APIKey != "env-key" {
		t.Errorf("expected the env key picked up, got %q", cfg.Models.Gemini.APIKey)
	}
	if !cfg.Models.Gemini.Enabled {
		t.Error("an env key should enable the provider")
	}
}

func TestConfigFileKeyWinsOverEnv(t *testing.T) {
	isolateHome(t)

	cfg := DefaultConfig()
	cfg.Models.Gemini.APIKey = "file-key"
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("GEMINI_API_KEY", "env-key")
	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Models.Gemini.APIKey != "file-key" {
		t.Errorf("the config file key must win, got %q", loaded.Models.Gemini.APIKey)
	}
}
