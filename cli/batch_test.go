package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dirkpetersen/froster-go/blobcopy"
	"github.com/dirkpetersen/froster-go/config"
	"github.com/dirkpetersen/froster-go/registry"
)

type fakeArchiveCopier struct{}

func (fakeArchiveCopier) Probe(ctx context.Context) error { return nil }
func (fakeArchiveCopier) Copy(ctx context.Context, src, dst string, opts blobcopy.CopyOptions) error {
	return nil
}

func (fakeArchiveCopier) VerifyChecksum(ctx context.Context, manifestPath, remoteURI string, maxDepth int) error {
	return nil
}
func (fakeArchiveCopier) Mount(ctx context.Context, uri, mountpoint string) error   { return nil }
func (fakeArchiveCopier) Unmount(ctx context.Context, mountpoint string) error      { return nil }
func (f fakeArchiveCopier) WithStorageClass(class registry.StorageClass) blobcopy.Copier {
	return f
}

func TestBatchContinuesPastAFailingFolder(t *testing.T) {
	var b batch

	var stderr bytes.Buffer

	b.fail(&stderr, "/one", errTest)
	b.ok()

	require.EqualError(t, b.err(), "1 of 2 folder(s) failed")
	require.Contains(t, stderr.String(), "/one")
}

func TestCommandArchiveRunProcessesEveryFolderDespiteAFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	good := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(good, "a.txt"), []byte("hello"), 0o644))

	rt := &runtime{
		cfg:    config.Default(),
		reg:    registry.Open(filepath.Join(t.TempDir(), "registry.json")),
		copier: fakeArchiveCopier{},
		user:   "tester",
	}

	var stderr bytes.Buffer

	c := commandArchive{folders: []string{missing, good}, stderr: &stderr}

	err := c.run(context.Background(), rt)
	require.Error(t, err, "one of the two folders was invalid and should be reported")

	_, found := rt.reg.Get(good)
	require.True(t, found, "the second folder should still be archived after the first one failed")
}

var errTest = &testError{"boom"}

type testError struct{ msg string }

func (e *testError) Error() string { return e.msg }
