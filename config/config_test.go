package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dirkpetersen/froster-go/config"
	"github.com/dirkpetersen/froster-go/registry"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := config.Default()
	cfg.Bucket = "my-bucket"
	cfg.Prefix = "archive"
	cfg.StorageClass = registry.Glacier

	require.NoError(t, config.Save(path, cfg))

	got, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, got)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDefaultMatchesDocumentedValues(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, int64(1024), cfg.SmallFileThresholdKiB)
	require.Equal(t, 4, cfg.Cores)
	require.Equal(t, 30, cfg.RetentionDays)
}
