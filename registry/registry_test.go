package registry_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dirkpetersen/froster-go/registry"
)

func TestPutGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	reg := registry.Open(path)

	entry := registry.Entry{
		LocalFolder:   "/data/project1",
		ArchiveFolder: ":s3:bucket/prefix/data/project1/",
		StorageClass:  registry.DeepArchive,
		ArchiveMode:   registry.Single,
		Timestamp:     time.Now(),
		User:          "alice",
	}

	require.NoError(t, reg.Put(entry.LocalFolder, entry))

	got, ok := reg.Get("/data/project1")
	require.True(t, ok)
	require.Equal(t, entry.ArchiveFolder, got.ArchiveFolder)

	_, ok = reg.Get("/data/other")
	require.False(t, ok)
}

func TestGetFallsBackToRecursiveAncestor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	reg := registry.Open(path)

	require.NoError(t, reg.Put("/data/project1", registry.Entry{
		LocalFolder: "/data/project1",
		ArchiveMode: registry.Recursive,
	}))

	got, ok := reg.Get("/data/project1/sub/dir")
	require.True(t, ok)
	require.Equal(t, registry.Recursive, got.ArchiveMode)
}

func TestGetDoesNotFallBackForSingleMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	reg := registry.Open(path)

	require.NoError(t, reg.Put("/data/project1", registry.Entry{
		LocalFolder: "/data/project1",
		ArchiveMode: registry.Single,
	}))

	_, ok := reg.Get("/data/project1/sub/dir")
	require.False(t, ok)
}

func TestCorruptRegistryReadsAsNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	reg := registry.Open(path)

	_, ok := reg.Get("/data/project1")
	require.False(t, ok)
}

func TestCorruptRegistryRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	reg := registry.Open(path)

	err := reg.Put("/data/project1", registry.Entry{LocalFolder: "/data/project1"})
	require.Error(t, err)

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	require.Equal(t, "{not json", string(data))
}

func TestToCSVSortsByTimestampDescending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	reg := registry.Open(path)

	now := time.Now()
	require.NoError(t, reg.Put("/data/old", registry.Entry{LocalFolder: "/data/old", Timestamp: now.Add(-time.Hour)}))
	require.NoError(t, reg.Put("/data/new", registry.Entry{LocalFolder: "/data/new", Timestamp: now}))

	csv, err := reg.ToCSV([]string{"local_folder"})
	require.NoError(t, err)

	require.Less(t, indexOf(csv, "/data/new"), indexOf(csv, "/data/old"))
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
