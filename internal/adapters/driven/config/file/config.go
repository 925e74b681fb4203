package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the persisted configuration. Zero values fall back to the
// defaults below at load time.
type Config struct {
	// MaterialsDir is the root of the study material tree.
	MaterialsDir string `toml:"materials_dir"`

	// DataDir holds the SQLite database; empty means ~/.tutoria/data.
	DataDir string `toml:"data_dir"`

	// Language is the transcription and OCR language hint.
	Language string `toml:"language"`

	// RedisURL switches the conversation store to Redis when set.
	RedisURL string `toml:"redis_url"`

	Defaults DefaultsConfig `toml:"defaults"`
	Watcher  WatcherConfig  `toml:"watcher"`
	Reranker RerankerConfig `toml:"reranker"`
}

// DefaultsConfig holds per-learner defaults used when no profile exists.
type DefaultsConfig struct {
	Level           string `toml:"level"`
	PreferredFormat string `toml:"preferred_format"`
}

// WatcherConfig tunes the materials directory watcher.
type WatcherConfig struct {
	// CooldownSeconds suppresses repeated events per file.
	CooldownSeconds int `toml:"cooldown_seconds"`

	// MaxPerSecond rate limits ingestion triggered by the watcher.
	MaxPerSecond int `toml:"max_per_second"`

	// Ignore lists glob patterns for paths the watcher never ingests.
	Ignore []string `toml:"ignore"`
}

// RerankerConfig enables the personalized candidate scorer.
type RerankerConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		MaterialsDir: "materiais",
		Language:     "pt",
		Defaults: DefaultsConfig{
			Level:           "intermediate",
			PreferredFormat: "text",
		},
		Watcher: WatcherConfig{
			CooldownSeconds: 5,
			MaxPerSecond:    4,
			Ignore:          []string{"**/.*", "**/*.tmp", "**/*.part"},
		},
	}
}

// Path returns the config file location for a config directory, defaulting
// to ~/.tutoria/config.toml.
func Path(configDir string) (string, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		configDir = filepath.Join(home, ".tutoria")
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// Load reads the config file, filling unset fields with defaults. A
// missing file yields the defaults without error.
func Load(configDir string) (Config, error) {
	cfg := Default()

	path, err := Path(configDir)
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// Save writes the config file, creating the directory if needed.
func Save(configDir string, cfg Config) error {
	path, err := Path(configDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.MaterialsDir == "" {
		cfg.MaterialsDir = def.MaterialsDir
	}
	if cfg.Language == "" {
		cfg.Language = def.Language
	}
	if cfg.Defaults.Level == "" {
		cfg.Defaults.Level = def.Defaults.Level
	}
	if cfg.Defaults.PreferredFormat == "" {
		cfg.Defaults.PreferredFormat = def.Defaults.PreferredFormat
	}
	if cfg.Watcher.CooldownSeconds <= 0 {
		cfg.Watcher.CooldownSeconds = def.Watcher.CooldownSeconds
	}
	if cfg.Watcher.MaxPerSecond <= 0 {
		cfg.Watcher.MaxPerSecond = def.Watcher.MaxPerSecond
	}
	if cfg.Watcher.Ignore == nil {
		cfg.Watcher.Ignore = def.Watcher.Ignore
	}
}
