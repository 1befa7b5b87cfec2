// Package restorer implements the Restore Orchestrator described in
// spec.md §4.10: look up the registry entry for a folder, trigger a
// Glacier restore if needed, download the archived content, and
// reverse-verify and unpack it locally. Grounded on the froster Python
// original's Archiver.restore, which runs the same
// lookup/glacier-check/download/verify/untar sequence.
package restorer

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/dirkpetersen/froster-go/blobcopy"
	"github.com/dirkpetersen/froster-go/checksum"
	"github.com/dirkpetersen/froster-go/ferrors"
	"github.com/dirkpetersen/froster-go/glacier"
	"github.com/dirkpetersen/froster-go/internal/logging"
	"github.com/dirkpetersen/froster-go/internal/pathutil"
	"github.com/dirkpetersen/froster-go/metafiles"
	"github.com/dirkpetersen/froster-go/pack"
	"github.com/dirkpetersen/froster-go/registry"
)

var log = logging.Module("froster/restorer")

// Options configures one Restore call.
type Options struct {
	// Recursive restores every descendant of folder, not just folder
	// itself (only valid when the registry entry covering folder is
	// itself Recursive).
	Recursive bool

	// SuppressDownload skips the copy/verify/unpack steps after a
	// successful (non-pending) Glacier check, for callers that only
	// want to trigger the restore and poll later.
	SuppressDownload bool

	RetrievalTier glacier.RetrievalTier
	RetentionDays int
}

// Restorer downloads and unpacks previously archived folders.
type Restorer struct {
	Copier   blobcopy.Copier
	Registry *registry.Registry
	Glacier  *glacier.Controller
}

// New returns a Restorer wired to copier, reg and an optional glacier
// controller (nil if the target bucket never uses cold storage classes).
func New(copier blobcopy.Copier, reg *registry.Registry, gl *glacier.Controller) *Restorer {
	return &Restorer{Copier: copier, Registry: reg, Glacier: gl}
}

// Result reports what Restore did.
type Result struct {
	// Pending is the number of Glacier keys still triggered or
	// in-progress; a positive value means the caller must reinvoke
	// Restore later instead of expecting local files now.
	Pending int
}

// Restore restores folder per spec.md §4.10.
func (r *Restorer) Restore(ctx context.Context, folder string, opts Options) (Result, error) {
	logger := log(ctx)

	canon, err := pathutil.Canonicalize([]string{folder})
	if err != nil {
		return Result{}, ferrors.Step("restore", folder, "", errors.Wrap(ferrors.ErrInvalidInput, err.Error()))
	}

	folder = canon[0]

	if !pathutil.ProbeReadWrite(folder).OK() {
		return Result{}, ferrors.Step("restore", folder, "", errors.Wrap(ferrors.ErrPermissionDenied, "folder is not both readable and writable"))
	}

	entry, exact, found := r.Registry.GetNearest(folder)
	if !found {
		return Result{}, ferrors.Step("restore", folder, "", ferrors.ErrNotArchived)
	}

	if !exact && entry.ArchiveMode != registry.Recursive {
		return Result{}, ferrors.Step("restore", folder, "", ferrors.ErrParentNotRecursive)
	}

	relTail := strings.TrimPrefix(strings.TrimPrefix(folder, entry.LocalFolder), string(filepath.Separator))

	remoteSrc := entry.ArchiveFolder
	if relTail != "" {
		remoteSrc += relTail + "/"
	}

	if r.Glacier != nil && isGlacierTier(entry.StorageClass) {
		prefix := strings.TrimPrefix(remoteSrc, ":s3:"+bucketOf(remoteSrc)+"/")

		classification, err := r.Glacier.Classify(ctx, prefix, opts.Recursive, opts.RetrievalTier, opts.RetentionDays)
		if err != nil {
			return Result{}, ferrors.Step("glacier-restore", folder, remoteSrc, err)
		}

		if pending := classification.Pending(); pending > 0 {
			logger.Infow("glacier restore pending", "folder", folder, "pending", pending)
			return Result{Pending: pending}, nil
		}
	}

	if opts.SuppressDownload {
		return Result{}, nil
	}

	maxDepth := 1
	if opts.Recursive {
		maxDepth = 0
	}

	if err := r.Copier.Copy(ctx, remoteSrc, folder, blobcopy.CopyOptions{MaxDepth: maxDepth}); err != nil {
		return Result{}, ferrors.Step("download", folder, remoteSrc, errors.Wrap(ferrors.ErrUploadFailed, err.Error()))
	}

	restoredManifestPath, err := checksum.ComputeManifest(ctx, folder, metafiles.RestoredManifest, 0)
	if err != nil {
		return Result{}, ferrors.Step("restored-manifest", folder, remoteSrc, errors.Wrap(ferrors.ErrManifestFailed, err.Error()))
	}

	if err := checksum.VerifyAgainstRemote(ctx, r.Copier, restoredManifestPath, remoteSrc); err != nil {
		return Result{}, ferrors.Step("verify", folder, remoteSrc, errors.Wrap(ferrors.ErrVerificationFailed, err.Error()))
	}

	if err := pack.Unpack(folder, opts.Recursive); err != nil {
		return Result{}, ferrors.Step("unpack", folder, remoteSrc, errors.Wrap(ferrors.ErrUnpackFailed, err.Error()))
	}

	logger.Infow("restored folder", "folder", folder, "remote", remoteSrc)

	return Result{}, nil
}

func isGlacierTier(class registry.StorageClass) bool {
	return class == registry.Glacier || class == registry.DeepArchive
}

// bucketOf extracts the bucket name from a ":s3:bucket/prefix/..." URI.
func bucketOf(uri string) string {
	trimmed := strings.TrimPrefix(uri, ":s3:")

	idx := strings.Index(trimmed, "/")
	if idx < 0 {
		return trimmed
	}

	return trimmed[:idx]
}
