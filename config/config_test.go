package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.FrameRate != 60 || cfg.DrainBudget != 5 || cfg.FragmentSize != 200 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "port: /dev/ttyACM1\nbaud: 115200\nframe_rate: 30\nread_timeout: 50ms\nnetwork_id: mesh-7\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "/dev/ttyACM1" || cfg.Baud != 115200 || cfg.FrameRate != 30 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ReadTimeout != 50*time.Millisecond {
		t.Errorf("read timeout = %v, want 50ms", cfg.ReadTimeout)
	}
	if cfg.NetworkID != "mesh-7" {
		t.Errorf("network id = %q, want mesh-7", cfg.NetworkID)
	}
	// Untouched fields keep defaults.
	if cfg.DrainBudget != 5 {
		t.Errorf("drain budget = %d, want default 5", cfg.DrainBudget)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("fragment_size: 9999\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("oversize fragment_size accepted")
	}
}
