// Package config holds the persistent settings every orchestrator
// reads: bucket/prefix, storage class, credential profile, small-file
// packing threshold, worker count, hotspots directory, and registry
// location. Grounded on the froster Python original's ConfigManager,
// which persists the same fields to a flat config file; here it is a
// single YAML document following the teacher's general preference for
// a declarative config format, using gopkg.in/yaml.v3 (named in
// SPEC_FULL.md's domain stack).
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/dirkpetersen/froster-go/registry"
)

// Config is the full set of settings the archive/restore/delete/index
// operations read.
type Config struct {
	Bucket       string                `yaml:"bucket"`
	Prefix       string                `yaml:"prefix"`
	StorageClass registry.StorageClass `yaml:"storage_class"`
	Profile      string                `yaml:"profile"`
	Region       string                `yaml:"region"`

	SmallFileThresholdKiB int64 `yaml:"small_file_threshold_kib"`
	PackSmallFiles        bool  `yaml:"pack_small_files"`
	Cores                 int   `yaml:"cores"`

	HotspotsDir  string `yaml:"hotspots_dir"`
	RegistryFile string `yaml:"registry_file"`

	Email string `yaml:"email"`

	RetrievalTier string `yaml:"retrieval_tier"`
	RetentionDays int    `yaml:"retention_days"`
}

// Default returns a Config with the froster original's documented
// defaults: a 1 MiB (1024 KiB) small-file threshold, a 4-worker hashing
// pool floor, and a 30-day Glacier retention window.
func Default() Config {
	return Config{
		StorageClass:          registry.DeepArchive,
		SmallFileThresholdKiB: 1024,
		PackSmallFiles:        true,
		Cores:                 4,
		RetrievalTier:         "Bulk",
		RetentionDays:         30,
	}
}

// Load reads and parses a YAML config file at path, filling in any
// unset fields from Default().
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading config %q", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parsing config %q", path)
	}

	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories as
// needed.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	return os.WriteFile(path, data, 0o600)
}
