package archiver_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/dirkpetersen/froster-go/archiver"
	"github.com/dirkpetersen/froster-go/blobcopy"
	"github.com/dirkpetersen/froster-go/config"
	"github.com/dirkpetersen/froster-go/ferrors"
	"github.com/dirkpetersen/froster-go/metafiles"
	"github.com/dirkpetersen/froster-go/registry"
)

type fakeCopier struct {
	copies       []string
	storageClass registry.StorageClass
	probeErr     error
}

func (f *fakeCopier) Probe(ctx context.Context) error { return f.probeErr }

func (f *fakeCopier) Copy(ctx context.Context, src, dst string, opts blobcopy.CopyOptions) error {
	f.copies = append(f.copies, src+"->"+dst)
	return nil
}

func (f *fakeCopier) VerifyChecksum(ctx context.Context, manifestPath, remoteURI string, maxDepth int) error {
	return nil
}

func (f *fakeCopier) Mount(ctx context.Context, uri, mountpoint string) error   { return nil }
func (f *fakeCopier) Unmount(ctx context.Context, mountpoint string) error     { return nil }

func (f *fakeCopier) WithStorageClass(class registry.StorageClass) blobcopy.Copier {
	return &fakeCopier{copies: f.copies, storageClass: class}
}

func newArchiver(t *testing.T) (*archiver.Archiver, *fakeCopier, *registry.Registry) {
	t.Helper()

	copier := &fakeCopier{}
	reg := registry.Open(filepath.Join(t.TempDir(), "registry.json"))
	cfg := config.Default()
	cfg.Bucket = "bucket"
	cfg.Prefix = "archive"

	return archiver.New(copier, reg, cfg, "alice"), copier, reg
}

func TestArchiveRunsFullPipelineAndRegisters(t *testing.T) {
	a, copier, reg := newArchiver(t)

	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "data.txt"), []byte("hello"), 0o644))

	require.NoError(t, a.Archive(context.Background(), folder, archiver.Options{}))

	require.FileExists(t, filepath.Join(folder, metafiles.Manifest))
	require.FileExists(t, filepath.Join(folder, metafiles.AllFilesCSV))
	require.NotEmpty(t, copier.copies)

	entry, ok := reg.Get(folder)
	require.True(t, ok)
	require.Equal(t, registry.Single, entry.ArchiveMode)
}

func TestArchiveRejectsAlreadyArchived(t *testing.T) {
	a, _, _ := newArchiver(t)

	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "data.txt"), []byte("hello"), 0o644))

	require.NoError(t, a.Archive(context.Background(), folder, archiver.Options{}))

	err := a.Archive(context.Background(), folder, archiver.Options{})
	require.ErrorIs(t, err, ferrors.ErrAlreadyArchived)
}

func TestArchiveRejectsReArchiveWithoutForce(t *testing.T) {
	a, _, reg := newArchiver(t)

	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "data.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, metafiles.Manifest), []byte("deadbeef  data.txt\n"), 0o644))

	err := a.Archive(context.Background(), folder, archiver.Options{})
	require.ErrorIs(t, err, ferrors.ErrAlreadyPrepared)

	_, ok := reg.Get(folder)
	require.False(t, ok)
}

func TestArchiveFailsFastOnProbeError(t *testing.T) {
	a, copier, _ := newArchiver(t)
	copier.probeErr = errors.New("access denied")

	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "data.txt"), []byte("hello"), 0o644))

	err := a.Archive(context.Background(), folder, archiver.Options{})
	require.ErrorIs(t, err, ferrors.ErrPermissionDenied)
	require.Empty(t, copier.copies)
}

func TestResetRemovesMetaFilesAndReportsPerFile(t *testing.T) {
	a, _, _ := newArchiver(t)

	folder := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(folder, "data.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, metafiles.Manifest), []byte("deadbeef  data.txt\n"), 0o644))

	results, err := a.Reset(folder)
	require.NoError(t, err)

	var manifestRemoved, csvRemoved bool

	for _, r := range results {
		switch r.Name {
		case metafiles.Manifest:
			manifestRemoved = r.Removed
		case metafiles.AllFilesCSV:
			csvRemoved = r.Removed
		}
	}

	require.True(t, manifestRemoved)
	require.False(t, csvRemoved)

	require.NoFileExists(t, filepath.Join(folder, metafiles.Manifest))
	require.FileExists(t, filepath.Join(folder, "data.txt"))
}

func TestArchiveSkipsEmptyFolder(t *testing.T) {
	a, copier, reg := newArchiver(t)

	folder := t.TempDir()

	require.NoError(t, a.Archive(context.Background(), folder, archiver.Options{}))
	require.Empty(t, copier.copies)

	_, ok := reg.Get(folder)
	require.False(t, ok)
}
