// Package config handles the persistent application configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config is the persistent application configuration
type Config struct {
	// AI Models
	Models ModelConfig `json:"models"`

	// Visitor stream source
	Source SourceConfig `json:"source"`
}

// ModelConfig holds AI model settings
type ModelConfig struct {
	Gemini ModelSettings `json:"gemini"`
	Claude ModelSettings `json:"claude"`
	OpenAI ModelSettings `json:"openai"`
	Ollama ModelSettings `json:"ollama"`

	// Preferred provider name; empty means first available
	Preferred string `json:"preferred,omitempty"`
}

// ModelSettings for a single AI provider
type ModelSettings struct {
	Enabled  bool   `json:"enabled"`
	APIKey   string `json:"api_key,omitempty"`
	Endpoint string `json:"endpoint,omitempty"` // For Ollama or custom endpoints
	Model    string `json:"model,omitempty"`    // Specific model to use
}

// SourceConfig selects the visitor stream backend.
type SourceConfig struct {
	// Mode is "sqlite" or "demo". Demo runs against a seeded in-memory
	// store with simulated activity.
	Mode string `json:"mode"`

	// DBPath is the SQLite database file for mode "sqlite". Empty means
	// ~/.visitorhub/visitors.db.
	DBPath string `json:"db_path,omitempty"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Models: ModelConfig{
			Gemini: ModelSettings{
				Enabled: true,
				Model:   "gemini-2.5-flash",
			},
			Claude: ModelSettings{
				Enabled: false,
				Model:   "claude-sonnet-4-5-20250929",
			},
			OpenAI: ModelSettings{
				Enabled: false,
				Model:   "gpt-4o",
			},
			// Ollama needs no API key; enabled by default as the local
			// fallback when nothing else is configured.
			Ollama: ModelSettings{
				Enabled:  true,
				Endpoint: "http://localhost:11434",
				// Model auto-detected from Ollama if not specified
			},
			Preferred: "gemini",
		},
		Source: SourceConfig{
			Mode: "sqlite",
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".visitorhub", "config.json")
}

// Load reads config from disk, or returns defaults
func Load() (*Config, error) {
	path := ConfigPath()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults and try to auto-populate from environment
			cfg := DefaultConfig()
			cfg.AutoPopulateFromEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), nil
	}

	cfg.AutoPopulateFromEnv()
	return &cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // Restrictive permissions for API keys
}

// AutoPopulateFromEnv fills in API keys from environment variables.
// Keys already set in the config file win.
func (c *Config) AutoPopulateFromEnv() {
	if c.Models.Gemini.APIKey == "" {
		if key := firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"); key != "" {
			c.Models.Gemini.APIKey = key
			c.Models.Gemini.Enabled = true
		}
	}
	if c.Models.Claude.APIKey == "" {
		if key := firstEnv("ANTHROPIC_API_KEY", "CLAUDE_API_KEY"); key != "" {
			c.Models.Claude.APIKey = key
			c.Models.Claude.Enabled = true
		}
	}
	if c.Models.OpenAI.APIKey == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			c.Models.OpenAI.APIKey = key
			c.Models.OpenAI.Enabled = true
		}
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

// DataDir returns ~/.visitorhub, creating it if needed.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".visitorhub")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
