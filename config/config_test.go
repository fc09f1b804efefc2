package config

import (
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Provider != "whisper-local" {
		t.Errorf("Provider = %q, want whisper-local", cfg.Provider)
	}
	if cfg.RecordTimeout != 2 {
		t.Errorf("RecordTimeout = %v, want 2", cfg.RecordTimeout)
	}
	if cfg.PhraseTimeout != 3 {
		t.Errorf("PhraseTimeout = %v, want 3", cfg.PhraseTimeout)
	}
	if cfg.EnergyThreshold != 0 {
		t.Errorf("EnergyThreshold = %d, want 0 (auto-calibrate)", cfg.EnergyThreshold)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:   "api provider",
			mutate: func(c *Config) { c.Provider = "whisper-api" },
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "dictation" },
			wantErr: true,
		},
		{
			name:    "zero record timeout",
			mutate:  func(c *Config) { c.RecordTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "negative phrase timeout",
			mutate:  func(c *Config) { c.PhraseTimeout = -1 },
			wantErr: true,
		},
		{
			name:    "negative energy threshold",
			mutate:  func(c *Config) { c.EnergyThreshold = -5 },
			wantErr: true,
		},
		{
			name:   "explicit threshold",
			mutate: func(c *Config) { c.EnergyThreshold = 1000 },
		},
		{
			name:   "language auto",
			mutate: func(c *Config) { c.Language = "auto" },
		},
		{
			name:   "language empty",
			mutate: func(c *Config) { c.Language = "" },
		},
		{
			name:   "language tag",
			mutate: func(c *Config) { c.Language = "zh-Hans" },
		},
		{
			name:    "language gibberish",
			mutate:  func(c *Config) { c.Language = "!!" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveHistoryDirExplicit(t *testing.T) {
	cfg := Default()
	cfg.HistoryDir = "/tmp/somewhere"

	dir, err := cfg.ResolveHistoryDir()
	if err != nil {
		t.Fatalf("ResolveHistoryDir: %v", err)
	}
	if dir != "/tmp/somewhere" {
		t.Errorf("dir = %q, want the configured path", dir)
	}
}
