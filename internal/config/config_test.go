package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boba.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
[engine]
work_cap = 10000

[driver]
tick_rate = "20ms"
max_frames = 300

[logging]
level = "debug"
`)
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.WorkCap != 10000 {
		t.Errorf("WorkCap = %d", cfg.Engine.WorkCap)
	}
	if cfg.Engine.RoundCap != 8 {
		t.Errorf("RoundCap = %d, want default 8", cfg.Engine.RoundCap)
	}
	if cfg.Driver.TickRate != 20*time.Millisecond {
		t.Errorf("TickRate = %s", cfg.Driver.TickRate)
	}
	if cfg.Driver.MaxFrames != 300 {
		t.Errorf("MaxFrames = %d", cfg.Driver.MaxFrames)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	if _, err := Load(path, false); err == nil {
		t.Error("expected error for missing required file")
	}
	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("optional Load: %v", err)
	}
	if cfg.Engine.RoundCap != 8 || cfg.Engine.WorkCap != 65536 {
		t.Errorf("defaults = %+v", cfg.Engine)
	}
}

func TestLoadParseError(t *testing.T) {
	path := writeFile(t, "[engine\nround_cap = ")
	_, err := Load(path, false)
	if err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Errorf("err = %v", err)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := defaults()
	cfg.Engine.RoundCap = 0
	cfg.Engine.WorkCap = -1
	cfg.Driver.TickRate = 0
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if n := len(multierr.Errors(err)); n != 4 {
		t.Errorf("got %d errors, want 4: %v", n, err)
	}
}

func TestValidateRoundCapAboveWorkCap(t *testing.T) {
	cfg := defaults()
	cfg.Engine.RoundCap = 100
	cfg.Engine.WorkCap = 10
	if err := cfg.Validate(); err == nil {
		t.Error("expected error")
	}
}
