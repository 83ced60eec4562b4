package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir string `toml:"log_dir"`
	// LibraryRoot is the destination for canonical renames. Empty disables
	// the relocation step.
	LibraryRoot string `toml:"library_root"`
	// IndexDB is the processed-file index location. Empty disables the index.
	IndexDB string `toml:"index_db"`
}

// Audio contains configuration for audio language tagging.
type Audio struct {
	Enabled        bool   `toml:"enabled"`
	ModelSize      string `toml:"model_size"`
	CPUThreads     int    `toml:"cpu_threads"`
	WhisperCommand string `toml:"whisper_command"`
}

// Subtitles contains configuration for subtitle embedding.
type Subtitles struct {
	EmbedEnabled bool `toml:"embed_enabled"`
}

// Cleanup contains configuration for post-organization cleanup.
type Cleanup struct {
	Enabled          bool `toml:"enabled"`
	DeleteDuplicates bool `toml:"delete_duplicates"`
}

// Naming contains configuration for canonical rename rules.
type Naming struct {
	IncludeQuality bool `toml:"include_quality"`
	Capitalize     bool `toml:"capitalize"`
}

// QBittorrent contains configuration for the torrent-removal client.
type QBittorrent struct {
	Host     string `toml:"host"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// Run contains configuration for the single-instance library lock.
type Run struct {
	LockPath      string `toml:"lock_path"`
	LockAttempts  int    `toml:"lock_attempts"`
	LockBackoffMS int    `toml:"lock_backoff_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration for a pipeline run.
type Config struct {
	Paths       Paths       `toml:"paths"`
	Audio       Audio       `toml:"audio"`
	Subtitles   Subtitles   `toml:"subtitles"`
	Cleanup     Cleanup     `toml:"cleanup"`
	Naming      Naming      `toml:"naming"`
	QBittorrent QBittorrent `toml:"qbittorrent"`
	Run         Run         `toml:"run"`
	Logging     Logging     `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Paths: Paths{
			LogDir:  "~/.local/share/langmux/logs",
			IndexDB: "~/.local/share/langmux/index.db",
		},
		Audio: Audio{
			Enabled:        true,
			ModelSize:      "tiny",
			CPUThreads:     2,
			WhisperCommand: "whisper-ctranslate2",
		},
		Subtitles:   Subtitles{EmbedEnabled: true},
		Cleanup:     Cleanup{Enabled: true},
		Naming:      Naming{IncludeQuality: true, Capitalize: true},
		QBittorrent: QBittorrent{Host: "http://localhost:8081"},
		Run: Run{
			LockPath:      "~/.local/share/langmux/run.lock",
			LockAttempts:  10,
			LockBackoffMS: 500,
		},
		Logging:     Logging{Level: "info", Format: "console"},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return "~/.config/langmux/config.toml"
}

// Load reads a TOML config from path, layered over the defaults. A missing
// file yields the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := cfg.normalize(); err != nil {
				return nil, err
			}
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// Validate checks invariants that would otherwise surface deep in a run.
func (c *Config) Validate() error {
	if c.Audio.CPUThreads < 0 {
		return fmt.Errorf("config: audio.cpu_threads must be >= 0, got %d", c.Audio.CPUThreads)
	}
	if strings.TrimSpace(c.Audio.ModelSize) == "" {
		return errors.New("config: audio.model_size must not be empty")
	}
	if c.Run.LockAttempts < 1 {
		return fmt.Errorf("config: run.lock_attempts must be >= 1, got %d", c.Run.LockAttempts)
	}
	if c.Run.LockBackoffMS < 0 {
		return fmt.Errorf("config: run.lock_backoff_ms must be >= 0, got %d", c.Run.LockBackoffMS)
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("config: logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := ExpandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists: %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves a leading ~ against the current user's home directory.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

func (c *Config) normalize() error {
	logDir, err := ExpandPath(c.Paths.LogDir)
	if err != nil {
		return err
	}
	c.Paths.LogDir = logDir
	for _, field := range []*string{&c.Paths.LibraryRoot, &c.Paths.IndexDB, &c.Run.LockPath} {
		expanded, err := ExpandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}
	c.Audio.ModelSize = strings.TrimSpace(c.Audio.ModelSize)
	c.Audio.WhisperCommand = strings.TrimSpace(c.Audio.WhisperCommand)
	c.QBittorrent.Host = strings.TrimRight(strings.TrimSpace(c.QBittorrent.Host), "/")
	return nil
}
