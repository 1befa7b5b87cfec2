package glacier

import (
	"context"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	objects       []minio.ObjectInfo
	restoreErrs   map[string]error
	restoreCalled map[string]bool
}

func (f *fakeStore) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, len(f.objects))
	for _, o := range f.objects {
		ch <- o
	}
	close(ch)

	return ch
}

func (f *fakeStore) StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	for _, o := range f.objects {
		if o.Key == key {
			return o, nil
		}
	}

	return minio.ObjectInfo{}, errNotFound{key}
}

type errNotFound struct{ key string }

func (e errNotFound) Error() string { return "not found: " + e.key }

func (f *fakeStore) RestoreObject(ctx context.Context, bucket, key, versionID string, opts minio.RestoreRequest) error {
	if f.restoreCalled == nil {
		f.restoreCalled = map[string]bool{}
	}

	f.restoreCalled[key] = true

	if err, ok := f.restoreErrs[key]; ok {
		return err
	}

	return nil
}

func TestClassifySeparatesByStorageClass(t *testing.T) {
	store := &fakeStore{
		objects: []minio.ObjectInfo{
			{Key: "prefix/hot.txt", StorageClass: "STANDARD"},
			{Key: "prefix/cold.txt", StorageClass: "GLACIER"},
			{Key: "prefix/ready.txt", StorageClass: "DEEP_ARCHIVE", Restore: &minio.RestoreInfo{ExpiryTime: time.Now().Add(24 * time.Hour)}},
			{Key: "prefix/restoring.txt", StorageClass: "GLACIER", Restore: &minio.RestoreInfo{OngoingRestore: true}},
		},
	}

	c := New(store, "bucket")

	result, err := c.Classify(context.Background(), "prefix/", true, TierStandard, 5)
	require.NoError(t, err)

	require.ElementsMatch(t, []string{"prefix/hot.txt"}, result.NotGlacier)
	require.ElementsMatch(t, []string{"prefix/ready.txt"}, result.Ready)
	require.ElementsMatch(t, []string{"prefix/restoring.txt"}, result.InProgress)
	require.ElementsMatch(t, []string{"prefix/cold.txt"}, result.Triggered)
	require.True(t, store.restoreCalled["prefix/cold.txt"])
}

func TestClassifyReclassifiesAlreadyInProgressError(t *testing.T) {
	store := &fakeStore{
		objects: []minio.ObjectInfo{
			{Key: "prefix/cold.txt", StorageClass: "GLACIER"},
		},
		restoreErrs: map[string]error{
			"prefix/cold.txt": minio.ErrorResponse{Code: "RestoreAlreadyInProgress"},
		},
	}

	c := New(store, "bucket")

	result, err := c.Classify(context.Background(), "prefix/", true, TierBulk, 10)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"prefix/cold.txt"}, result.InProgress)
	require.Empty(t, result.Triggered)
}

func TestPendingCountsTriggeredAndInProgress(t *testing.T) {
	c := Classification{Triggered: []string{"a", "b"}, InProgress: []string{"c"}}
	require.Equal(t, 3, c.Pending())
}
