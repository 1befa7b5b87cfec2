package index_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dirkpetersen/froster-go/index"
)

func TestScanWritesHotspotsAboveThreshold(t *testing.T) {
	root := t.TempDir()

	big := filepath.Join(root, "big")
	require.NoError(t, os.Mkdir(big, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(big, "f.bin"), make([]byte, 2*1024*1024), 0o644))

	small := filepath.Join(root, "small")
	require.NoError(t, os.Mkdir(small, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(small, "f.txt"), []byte("x"), 0o644))

	dest := filepath.Join(t.TempDir(), "hotspots.csv")

	res, err := index.Scan(root, dest, index.Options{Thresholds: index.Thresholds{MinGiB: 0, MinMiBAvg: 1}})
	require.NoError(t, err)
	require.Greater(t, res.HotspotCount, 0)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Contains(t, string(data), "big")
}

func TestScanIsIdempotent(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "f.txt"), []byte("x"), 0o644))

	dest := filepath.Join(t.TempDir(), "hotspots.csv")

	_, err := index.Scan(root, dest, index.Options{})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(dest, []byte("sentinel"), 0o644))

	res, err := index.Scan(root, dest, index.Options{})
	require.NoError(t, err)
	require.Equal(t, dest, res.CSVPath)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "sentinel", string(data))
}

func TestHotspotsFilenameReplacesSeparators(t *testing.T) {
	name := index.HotspotsFilename("/some/plain/path")
	require.Equal(t, "+some+plain+path.csv", name)
}
