// Package glacier implements the Glacier Restore Controller described
// in spec.md §4.7: it enumerates objects under a prefix, classifies
// each by storage class and outstanding-restore state, and issues
// restore requests for cold objects. Grounded on minio-go/v7 as the S3
// client library (the only S3 SDK appearing anywhere in the retrieval
// pack, via repo/blob/s3's test files), using its ListObjects,
// StatObject and RestoreObject calls.
package glacier

import (
	"context"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

// RetrievalTier is the Glacier/Deep Archive retrieval speed requested.
type RetrievalTier string

const (
	TierBulk      RetrievalTier = "Bulk"
	TierStandard  RetrievalTier = "Standard"
	TierExpedited RetrievalTier = "Expedited"
)

func (t RetrievalTier) minioTier() minio.TierType {
	switch t {
	case TierBulk:
		return minio.TierBulk
	case TierExpedited:
		return minio.TierExpedited
	default:
		return minio.TierStandard
	}
}

var glacierClasses = map[string]struct{}{
	"GLACIER":      {},
	"DEEP_ARCHIVE": {},
}

// Classification is the outcome of one Classify call.
type Classification struct {
	Triggered  []string
	InProgress []string
	Ready      []string
	NotGlacier []string
}

// Pending is len(Triggered)+len(InProgress): a positive count tells the
// restore orchestrator to stop and let the caller reinvoke later
// instead of proceeding to download (spec.md §4.7 caller policy).
func (c Classification) Pending() int {
	return len(c.Triggered) + len(c.InProgress)
}

// objectStore is the slice of the minio.Client surface Classify needs;
// narrowing it to an interface lets tests substitute a fake store
// instead of talking to a real S3-compatible endpoint. *minio.Client
// satisfies this interface as-is.
type objectStore interface {
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RestoreObject(ctx context.Context, bucket, key, versionID string, opts minio.RestoreRequest) error
}

// Controller issues and tracks Glacier/Deep Archive restore requests
// for one bucket.
type Controller struct {
	client objectStore
	bucket string
}

// New returns a Controller backed by client for bucket. client is
// ordinarily a *minio.Client; tests may pass any objectStore fake.
func New(client objectStore, bucket string) *Controller {
	return &Controller{client: client, bucket: bucket}
}

// Classify enumerates every object key under prefix (only its direct
// children unless recursive is set), fetches each object's metadata,
// and classifies it as not glacier-class, already restored, restoring, or
// newly triggered — issuing a restore request for any cold object with
// no outstanding or completed restore.
func (c *Controller) Classify(ctx context.Context, prefix string, recursive bool, tier RetrievalTier, retentionDays int) (Classification, error) {
	var result Classification

	objectCh := c.client.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
	})

	for obj := range objectCh {
		if obj.Err != nil {
			return Classification{}, errors.Wrapf(obj.Err, "listing %q", prefix)
		}

		if strings.HasSuffix(obj.Key, "/") {
			continue
		}

		if err := c.classifyOne(ctx, obj.Key, tier, retentionDays, &result); err != nil {
			return Classification{}, err
		}
	}

	return result, nil
}

func (c *Controller) classifyOne(ctx context.Context, key string, tier RetrievalTier, retentionDays int, result *Classification) error {
	info, err := c.client.StatObject(ctx, c.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return errors.Wrapf(err, "stat %q", key)
	}

	if _, cold := glacierClasses[info.StorageClass]; !cold {
		result.NotGlacier = append(result.NotGlacier, key)
		return nil
	}

	if info.Restore != nil {
		if info.Restore.OngoingRestore {
			result.InProgress = append(result.InProgress, key)
			return nil
		}

		if !info.Restore.ExpiryTime.IsZero() {
			result.Ready = append(result.Ready, key)
			return nil
		}
	}

	opts := minio.RestoreRequest{}
	opts.SetDays(retentionDays)
	opts.SetGlacierJobParameters(minio.GlacierJobParameters{Tier: tier.minioTier()})

	if err := c.client.RestoreObject(ctx, c.bucket, key, "", opts); err != nil {
		if isRestoreAlreadyInProgress(err) {
			result.InProgress = append(result.InProgress, key)
			return nil
		}

		return errors.Wrapf(err, "restoring %q", key)
	}

	result.Triggered = append(result.Triggered, key)

	return nil
}

func isRestoreAlreadyInProgress(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "RestoreAlreadyInProgress"
}
