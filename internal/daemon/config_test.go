package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Ops.Host != "127.0.0.1" {
		t.Errorf("Ops.Host = %q, want %q", cfg.Ops.Host, "127.0.0.1")
	}
	if cfg.Ops.Port != 8090 {
		t.Errorf("Ops.Port = %d, want %d", cfg.Ops.Port, 8090)
	}
	if !cfg.Ops.MetricsEnabled {
		t.Error("Ops.MetricsEnabled should be true by default")
	}
	if cfg.Ledger.Epsilon != 1e-6 {
		t.Errorf("Ledger.Epsilon = %v, want 1e-6", cfg.Ledger.Epsilon)
	}
	if cfg.VerifyInterval() != 0 {
		t.Error("auditor should be disabled by default")
	}
	if cfg.Achievements.StreakDays != 7 {
		t.Errorf("Achievements.StreakDays = %d, want 7", cfg.Achievements.StreakDays)
	}
	if cfg.Achievements.StreakMinScore != 80 {
		t.Errorf("Achievements.StreakMinScore = %d, want 80", cfg.Achievements.StreakMinScore)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Ops.Port != DefaultConfig().Ops.Port {
		t.Errorf("Ops.Port = %d, want default", cfg.Ops.Port)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := DefaultConfig()
	cfg.Storage.Path = "/var/lib/greenloop"
	cfg.Ops.Port = 9999
	cfg.Ledger.VerifyInterval = "15m"
	cfg.Achievements.StreakMinScore = 90

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded.Storage.Path != "/var/lib/greenloop" {
		t.Errorf("Storage.Path = %q", loaded.Storage.Path)
	}
	if loaded.Ops.Port != 9999 {
		t.Errorf("Ops.Port = %d, want 9999", loaded.Ops.Port)
	}
	if loaded.VerifyInterval() != 15*time.Minute {
		t.Errorf("VerifyInterval() = %v, want 15m", loaded.VerifyInterval())
	}
	if loaded.Achievements.StreakMinScore != 90 {
		t.Errorf("StreakMinScore = %d, want 90", loaded.Achievements.StreakMinScore)
	}
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[ops]\nprot = 8090\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() should reject unknown keys")
	}
}

func TestVerifyInterval_Invalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Ledger.VerifyInterval = "soon"
	if cfg.VerifyInterval() != 0 {
		t.Errorf("invalid interval should disable the auditor, got %v", cfg.VerifyInterval())
	}
}
