// Package config handles application configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
)

const (
	appName        = "livescribe"
	configFileName = "config.json"
)

// Config represents the application configuration. Values from the config
// file are overridden by CLI flags; the core only ever sees validated
// values.
type Config struct {
	// Recognition backend
	Provider  string `json:"provider"`             // "whisper-local" or "whisper-api"
	ModelPath string `json:"model_path,omitempty"` // ggml model for whisper-local
	APIKey    string `json:"api_key,omitempty"`
	BaseURL   string `json:"base_url,omitempty"`
	APIModel  string `json:"api_model,omitempty"`

	// Capture and segmentation
	Language        string  `json:"language"`
	EnergyThreshold int     `json:"energy_threshold"` // 0 = calibrate from ambient noise
	RecordTimeout   float64 `json:"record_timeout"`   // max segment duration, seconds
	PhraseTimeout   float64 `json:"phrase_timeout"`   // phrase-ending silence, seconds
	Microphone      string  `json:"microphone,omitempty"`

	// Output
	Pipe       bool `json:"pipe"`       // plain line stream instead of redrawn view
	Timestamps bool `json:"timestamps"` // prefix streamed lines with wall-clock time

	// Transcript persistence
	History    bool   `json:"history"`
	HistoryDir string `json:"history_dir,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Provider:      "whisper-local",
		Language:      "en",
		RecordTimeout: 2,
		PhraseTimeout: 3,
	}
}

// Load loads configuration from the config file, or returns the default
// config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, fmt.Errorf("get config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// Save persists the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return fmt.Errorf("get config path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate checks the configuration before the pipeline starts.
func (c *Config) Validate() error {
	switch c.Provider {
	case "whisper-local", "whisper-api":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}

	if c.RecordTimeout <= 0 {
		return fmt.Errorf("record_timeout must be positive, got %v", c.RecordTimeout)
	}
	if c.PhraseTimeout <= 0 {
		return fmt.Errorf("phrase_timeout must be positive, got %v", c.PhraseTimeout)
	}
	if c.EnergyThreshold < 0 {
		return fmt.Errorf("energy_threshold must not be negative, got %d", c.EnergyThreshold)
	}

	if c.Language != "" && c.Language != "auto" {
		if _, err := language.Parse(c.Language); err != nil {
			return fmt.Errorf("invalid language %q: %w", c.Language, err)
		}
	}
	return nil
}

// ResolveHistoryDir returns the configured history directory, or the
// default under the user config dir.
func (c *Config) ResolveHistoryDir() (string, error) {
	if c.HistoryDir != "" {
		return c.HistoryDir, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, appName, "history"), nil
}

func configPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName, configFileName), nil
}
