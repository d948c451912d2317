package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.TargetPattern != "churn" || c.PreviewRows != 5 || c.Parallelism != 4 {
		t.Fatalf("analysis defaults = %+v", c)
	}
	if c.FigureWidthIn != 15 || c.PanelHeightIn != 5 || c.DPI != 72 {
		t.Fatalf("figure defaults = %+v", c)
	}
	if c.UploadLimitMB != 50 || c.LogLevel != "info" {
		t.Fatalf("server defaults = %+v", c)
	}
	if filepath.Base(c.SamplesDir) != "samples" {
		t.Fatalf("samples dir = %q", c.SamplesDir)
	}
}

func TestSaveLoadRoundTripAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	c.TargetPattern = "exited"
	c.DPI = 100
	c.SamplesDir = "/data/samples"
	if err := Save(c, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.TargetPattern != "exited" || got.DPI != 100 || got.SamplesDir != "/data/samples" {
		t.Fatalf("round trip = %+v", got)
	}

	t.Setenv("CHURNSCOPE_DPI", "150")
	got, err = Load(path)
	if err != nil {
		t.Fatalf("Load with env: %v", err)
	}
	if got.DPI != 150 {
		t.Fatalf("env override dpi = %d", got.DPI)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("dpi: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}
