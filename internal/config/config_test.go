package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
}

func TestValidateRejectsEmptyBase(t *testing.T) {
	cfg := Default()
	cfg.Paths.Base = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for empty paths.base")
	}
}

func TestValidateRejectsFuseviewWithoutMountpoint(t *testing.T) {
	cfg := Default()
	cfg.FuseView.Enabled = true
	cfg.FuseView.MountPoint = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("Validate() = nil, want error for enabled fuseview without mount_point")
	}
}

func TestCatalogPathDefaultsUnderBase(t *testing.T) {
	cfg := Default()
	cfg.Paths.Base = "/data/telemdex"
	if got, want := cfg.CatalogPath(), "/data/telemdex/catalog.db"; got != want {
		t.Fatalf("CatalogPath() = %q, want %q", got, want)
	}
}

func TestLoadFillsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"paths":{"base":"/custom"}}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Paths.Base != "/custom" {
		t.Fatalf("Paths.Base = %q, want /custom", cfg.Paths.Base)
	}
	if cfg.Catalog.Enabled != true {
		t.Fatalf("Catalog.Enabled = %v, want true (default)", cfg.Catalog.Enabled)
	}
}

func TestEnsureConfigFileWritesDefaultOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	if err := EnsureConfigFile(path); err != nil {
		t.Fatalf("EnsureConfigFile: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"paths":{"base":"/kept"}}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := EnsureConfigFile(path); err != nil {
		t.Fatalf("EnsureConfigFile (second call): %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(second) == string(first) {
		t.Fatal("EnsureConfigFile overwrote an existing file")
	}
}
