// Package project loads the ripple.toml stage configuration. The manifest
// is optional; every setting has a flag-level override and a sane default.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file the stage looks for.
const ManifestName = "ripple.toml"

// Config is the [infer] section of ripple.toml.
type Config struct {
	// Jobs bounds the number of units processed in parallel.
	Jobs int `toml:"jobs"`
	// MaxDiagnostics caps the diagnostics kept per unit.
	MaxDiagnostics int `toml:"max_diagnostics"`
	// TraceLevel is off|phase|detail|debug.
	TraceLevel string `toml:"trace_level"`
	// Cache toggles the on-disk result cache.
	Cache bool `toml:"cache"`
	// UnitSuffix selects which files in a directory are treated as units.
	UnitSuffix string `toml:"unit_suffix"`
}

type manifest struct {
	Infer Config `toml:"infer"`
}

// Default returns the configuration used when no manifest is present.
func Default() Config {
	return Config{
		Jobs:           runtime.NumCPU(),
		MaxDiagnostics: 256,
		TraceLevel:     "off",
		Cache:          true,
		UnitSuffix:     ".rplu",
	}
}

// Load reads the manifest at path and fills unset fields with defaults.
func Load(path string) (Config, error) {
	var m manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Default(), fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	cfg := m.Infer
	def := Default()
	if cfg.Jobs <= 0 {
		cfg.Jobs = def.Jobs
	}
	if cfg.MaxDiagnostics <= 0 {
		cfg.MaxDiagnostics = def.MaxDiagnostics
	}
	if cfg.TraceLevel == "" {
		cfg.TraceLevel = def.TraceLevel
	}
	if cfg.UnitSuffix == "" {
		cfg.UnitSuffix = def.UnitSuffix
	}
	if !meta.IsDefined("infer", "cache") {
		cfg.Cache = def.Cache
	}
	return cfg, nil
}

// Find walks up from startDir to locate the manifest.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest manifest or returns defaults when none exists.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Default(), err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}
