// Package config loads telemdex's CLI configuration: where the index
// lives on disk, and whether the supplemental catalog/fuseview
// features are turned on.
package config

import (
	"encoding/json"
	"errors"
	"os"
)

// Paths describes where telemdex keeps its data.
type Paths struct {
	Base string `json:"base"` // root passed to store.Open; holds base/data/...
}

// Catalog configures the supplemental SQLite activity ledger.
type Catalog struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"` // defaults to <base>/catalog.db when empty
}

// FuseView configures the supplemental read-only debug mount.
type FuseView struct {
	Enabled    bool   `json:"enabled"`
	MountPoint string `json:"mount_point"`
}

// Config is telemdex's top-level configuration file shape.
type Config struct {
	Paths    Paths    `json:"paths"`
	Catalog  Catalog  `json:"catalog"`
	FuseView FuseView `json:"fuseview"`
}

// Default returns safe-to-boot defaults: a ./telemdex-data directory
// relative to the working directory, catalog ledger on, fuseview off (mounting needs
// root or fuse group membership, so it should be opt-in).
func Default() Config {
	return Config{
		Paths:    Paths{Base: "./telemdex-data"},
		Catalog:  Catalog{Enabled: true},
		FuseView: FuseView{Enabled: false, MountPoint: "./telemdex-mount"},
	}
}

// Load reads and parses the config file at path, filling in defaults
// for anything the file omits.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Paths.Base == "" {
		cfg.Paths.Base = Default().Paths.Base
	}
	return cfg, nil
}

// Validate rejects configurations the CLI can't act on.
func (c Config) Validate() error {
	if c.Paths.Base == "" {
		return errors.New("paths.base required")
	}
	if c.FuseView.Enabled && c.FuseView.MountPoint == "" {
		return errors.New("fuseview.mount_point required when fuseview.enabled")
	}
	return nil
}

// CatalogPath resolves the ledger path, defaulting to a file alongside
// the index's data directory.
func (c Config) CatalogPath() string {
	if c.Catalog.Path != "" {
		return c.Catalog.Path
	}
	return c.Paths.Base + "/catalog.db"
}
