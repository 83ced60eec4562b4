package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Audio.Enabled || cfg.Audio.ModelSize != "tiny" {
		t.Errorf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if !cfg.Subtitles.EmbedEnabled {
		t.Error("subtitle embedding should default on")
	}
	if cfg.Run.LockAttempts != 10 {
		t.Errorf("lock_attempts default = %d, want 10", cfg.Run.LockAttempts)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	payload := `
[audio]
enabled = false
model_size = "base"
cpu_threads = 4

[qbittorrent]
host = "http://nas:9090/"
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Audio.Enabled {
		t.Error("audio.enabled override not applied")
	}
	if cfg.Audio.ModelSize != "base" || cfg.Audio.CPUThreads != 4 {
		t.Errorf("audio overrides not applied: %+v", cfg.Audio)
	}
	if cfg.QBittorrent.Host != "http://nas:9090" {
		t.Errorf("host should be trimmed of trailing slash: %q", cfg.QBittorrent.Host)
	}
	// Untouched sections keep defaults.
	if !cfg.Subtitles.EmbedEnabled {
		t.Error("subtitles default lost on partial config")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative threads", func(c *Config) { c.Audio.CPUThreads = -1 }},
		{"empty model", func(c *Config) { c.Audio.ModelSize = " " }},
		{"zero lock attempts", func(c *Config) { c.Run.LockAttempts = 0 }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
	if cfg.Audio.ModelSize != "tiny" {
		t.Errorf("sample config model_size = %q", cfg.Audio.ModelSize)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected refusal to overwrite existing config")
	}
}
