package pathutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dirkpetersen/froster-go/internal/pathutil"
)

func TestCanonicalizeResolvesSymlinksAndTrailingSlash(t *testing.T) {
	root := t.TempDir()

	target := filepath.Join(root, "real")
	require.NoError(t, os.Mkdir(target, 0o755))

	link := filepath.Join(root, "link")
	require.NoError(t, os.Symlink(target, link))

	out, err := pathutil.Canonicalize([]string{link + string(filepath.Separator)})
	require.NoError(t, err)
	require.Len(t, out, 1)

	want, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)
	require.Equal(t, want, out[0])
}

func TestCanonicalizeRejectsMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := pathutil.Canonicalize([]string{missing})
	require.Error(t, err)
}

func TestProbeReadWriteOKOnOrdinaryDirectory(t *testing.T) {
	dir := t.TempDir()

	rw := pathutil.ProbeReadWrite(dir)
	require.True(t, rw.OK())
}

func TestProbeReadWriteFailsOnMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	rw := pathutil.ProbeReadWrite(missing)
	require.False(t, rw.OK())
}

func TestProbeTreeNonRecursiveChecksDirectChildrenOnly(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644))

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	unusable, ok := pathutil.ProbeTree(root, false)
	require.True(t, ok)
	require.Empty(t, unusable)
}

func TestProbeTreeRecursiveWalksDescendants(t *testing.T) {
	root := t.TempDir()

	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "f.bin"), []byte("x"), 0o644))

	unusable, ok := pathutil.ProbeTree(root, true)
	require.True(t, ok)
	require.Empty(t, unusable)
}

func TestProbeTreeReportsMissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	unusable, ok := pathutil.ProbeTree(missing, true)
	require.False(t, ok)
	require.Equal(t, missing, unusable)
}

func TestDetectRecursiveCollisionFindsAncestor(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	require.True(t, pathutil.DetectRecursiveCollision([]string{root, sub}))
}

func TestDetectRecursiveCollisionFindsExactDuplicate(t *testing.T) {
	dir := t.TempDir()

	require.True(t, pathutil.DetectRecursiveCollision([]string{dir, dir}))
}

func TestDetectRecursiveCollisionAllowsSiblings(t *testing.T) {
	root := t.TempDir()

	a := filepath.Join(root, "a")
	b := filepath.Join(root, "b")
	require.NoError(t, os.Mkdir(a, 0o755))
	require.NoError(t, os.Mkdir(b, 0o755))

	require.False(t, pathutil.DetectRecursiveCollision([]string{a, b}))
}
