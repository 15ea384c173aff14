// Package daemon holds the long-running service configuration.
// Config lives at ~/.greenloop/config.toml; a missing file yields
// defaults, and Save writes the canonical TOML rendering.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the full daemon configuration.
type Config struct {
	Storage      StorageConfig      `toml:"storage"`
	Ops          OpsConfig          `toml:"ops"`
	Ledger       LedgerConfig       `toml:"ledger"`
	Achievements AchievementsConfig `toml:"achievements"`
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	// Path is the data directory. Empty means ~/.greenloop.
	Path string `toml:"path"`
}

// OpsConfig controls the HTTP ops server.
type OpsConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	MetricsEnabled bool   `toml:"metrics_enabled"`
}

// LedgerConfig controls ledger behavior.
type LedgerConfig struct {
	// Epsilon is the negligible-amount threshold for ledger writes.
	Epsilon float64 `toml:"epsilon"`
	// VerifyInterval is the period between background chain
	// verifications, e.g. "15m". Empty disables the auditor.
	VerifyInterval string `toml:"verify_interval"`
}

// AchievementsConfig controls streak badge evaluation.
type AchievementsConfig struct {
	StreakDays     int `toml:"streak_days"`
	StreakMinScore int `toml:"streak_min_score"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{Path: ""},
		Ops: OpsConfig{
			Host:           "127.0.0.1",
			Port:           8090,
			MetricsEnabled: true,
		},
		Ledger: LedgerConfig{
			Epsilon:        1e-6,
			VerifyInterval: "",
		},
		Achievements: AchievementsConfig{
			StreakDays:     7,
			StreakMinScore: 80,
		},
	}
}

// DataDir resolves the configured data directory, defaulting to
// ~/.greenloop.
func (c Config) DataDir() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".greenloop"
	}
	return filepath.Join(home, ".greenloop")
}

// VerifyInterval parses the configured auditor interval. Empty or invalid
// values disable the auditor.
func (c Config) VerifyInterval() time.Duration {
	if c.Ledger.VerifyInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Ledger.VerifyInterval)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// ConfigPath returns the canonical config file location.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".greenloop", "config.toml")
	}
	return filepath.Join(home, ".greenloop", "config.toml")
}

// Load reads the config file at path, falling back to defaults when the
// file does not exist. Unknown keys are an error so typos fail loudly.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	meta, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}
	return cfg, nil
}

// Save writes the config as TOML, creating the parent directory.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
