package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != ":8080" {
		t.Errorf("port = %q, want :8080", cfg.Port)
	}
	if cfg.SyncImportLimit != 10 {
		t.Errorf("sync import limit = %d, want 10", cfg.SyncImportLimit)
	}
	if cfg.DefaultStoppedSpeedThreshold != 0.28 {
		t.Errorf("stopped speed threshold = %f, want 0.28", cfg.DefaultStoppedSpeedThreshold)
	}
	if len(cfg.AllowedExtensions) != 5 {
		t.Errorf("allowed extensions = %v, want 5 formats", cfg.AllowedExtensions)
	}
	if cfg.MaxTitleLength != 255 {
		t.Errorf("max title length = %d, want 255", cfg.MaxTitleLength)
	}
	if cfg.RetryDelay != 500*time.Millisecond {
		t.Errorf("retry delay = %v, want 500ms", cfg.RetryDelay)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SYNC_IMPORT_LIMIT", "3")
	t.Setenv("ALLOWED_EXTENSIONS", ".gpx,.fit")
	t.Setenv("STOPPED_SPEED_THRESHOLD", "0.5")

	cfg := Load()

	if cfg.SyncImportLimit != 3 {
		t.Errorf("sync import limit = %d, want 3", cfg.SyncImportLimit)
	}
	if len(cfg.AllowedExtensions) != 2 || cfg.AllowedExtensions[0] != ".gpx" {
		t.Errorf("allowed extensions = %v, want [.gpx .fit]", cfg.AllowedExtensions)
	}
	if cfg.DefaultStoppedSpeedThreshold != 0.5 {
		t.Errorf("stopped speed threshold = %f, want 0.5", cfg.DefaultStoppedSpeedThreshold)
	}
}
