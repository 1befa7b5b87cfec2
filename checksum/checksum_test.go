package checksum_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dirkpetersen/froster-go/checksum"
)

func TestComputeManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.bin"), []byte("world"), 0o644))

	manifestPath, err := checksum.ComputeManifest(context.Background(), dir, ".froster.md5sum", 2)
	require.NoError(t, err)

	entries, err := checksum.ReadManifest(manifestPath)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	names := map[string]string{}
	for _, e := range entries {
		names[e.Basename] = e.Digest
	}

	digestA, err := checksum.HashFile(filepath.Join(dir, "a.bin"))
	require.NoError(t, err)
	require.Equal(t, digestA, names["a.bin"])
}

func TestComputeManifestEmptyDirFails(t *testing.T) {
	dir := t.TempDir()

	_, err := checksum.ComputeManifest(context.Background(), dir, ".froster.md5sum", 4)
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, ".froster.md5sum"))
	require.True(t, os.IsNotExist(statErr))
}

func TestComputeManifestExcludesMetaFiles(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Froster.allfiles.csv"), []byte("csv"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Froster.smallfiles.tar"), []byte("tar"), 0o644))

	manifestPath, err := checksum.ComputeManifest(context.Background(), dir, ".froster.md5sum", 1)
	require.NoError(t, err)

	entries, err := checksum.ReadManifest(manifestPath)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var names []string
	for _, e := range entries {
		names = append(names, e.Basename)
	}

	require.ElementsMatch(t, []string{"a.bin", "Froster.smallfiles.tar"}, names,
		"the packed small-files tar is ordinary content, not metadata, and must be hashed")
}
