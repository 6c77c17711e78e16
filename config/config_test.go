package config

import (
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.DataDir != "user_data" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.UploadsDir != "uploads" {
		t.Errorf("UploadsDir = %q", cfg.UploadsDir)
	}
	if cfg.RecordsFile != "all_feedbacks.json" {
		t.Errorf("RecordsFile = %q", cfg.RecordsFile)
	}
	if cfg.FingerprintLen != 10 {
		t.Errorf("FingerprintLen = %d", cfg.FingerprintLen)
	}
	if cfg.MaxFilenameLen != 64 {
		t.Errorf("MaxFilenameLen = %d", cfg.MaxFilenameLen)
	}
	if cfg.LogFormat != "console" || cfg.LogLevel != "info" {
		t.Errorf("log settings = %q/%q", cfg.LogFormat, cfg.LogLevel)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("MIXMENTOR_DATA_DIR", "/tmp/data")
	t.Setenv("MIXMENTOR_FINGERPRINT_LEN", "16")
	t.Setenv("MIXMENTOR_LOG_FORMAT", "json")

	cfg, err := FromEnv("mixmentor")
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.DataDir != "/tmp/data" {
		t.Errorf("DataDir = %q, want env override", cfg.DataDir)
	}
	if cfg.FingerprintLen != 16 {
		t.Errorf("FingerprintLen = %d, want 16", cfg.FingerprintLen)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	// Untouched fields keep their struct-tag defaults.
	if cfg.RecordsFile != "all_feedbacks.json" {
		t.Errorf("RecordsFile = %q, want default", cfg.RecordsFile)
	}
}

func TestFromEnvBadValue(t *testing.T) {
	t.Setenv("MIXMENTOR_FINGERPRINT_LEN", "not-a-number")
	if _, err := FromEnv("mixmentor"); err == nil {
		t.Error("expected error for non-numeric value")
	}
}

func TestRecordsPath(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/srv/data"
	if got, want := cfg.RecordsPath(), filepath.Join("/srv/data", "all_feedbacks.json"); got != want {
		t.Errorf("RecordsPath() = %q, want %q", got, want)
	}
}

func TestEnsureDirs(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.UploadsDir = filepath.Join(dir, "uploads")

	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}
	// Idempotent on existing directories.
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("second EnsureDirs failed: %v", err)
	}
}
