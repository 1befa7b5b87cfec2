// Package blobcopy defines the narrow interface the Object-Store Copier
// (spec.md §4.6) exposes to the orchestrators: copying folder contents
// to and from a remote object-store URI, verifying a local manifest
// against the remote copy, and mounting/unmounting a remote prefix as a
// local filesystem. Concrete transports live in subpackages (see
// blobcopy/rclone).
package blobcopy

import (
	"context"

	"github.com/dirkpetersen/froster-go/registry"
)

// CopyOptions configures one Copy call.
type CopyOptions struct {
	// MaxDepth limits recursion: 1 copies only the direct children of
	// src, matching the archive/restore orchestrators' non-recursive
	// upload/download step (spec.md §4.9 step 7, §4.10 step 5). 0 means
	// unbounded (used for recursive restore).
	MaxDepth int

	// Exclude lists basenames/globs never copied (the archiver passes
	// metafiles.ContentExcluded).
	Exclude []string

	// FollowSymlinks mirrors rclone's --copy-links: symlinked files are
	// copied as regular files rather than skipped.
	FollowSymlinks bool
}

// Copier moves folder contents to and from a remote object-store URI.
type Copier interface {
	// Probe checks that the remote backing this Copier is reachable and
	// writable with the current credentials, so the archive orchestrator
	// can fail fast (spec.md §4.9 step 1 prerequisite) instead of
	// discovering a bad profile partway through an upload.
	Probe(ctx context.Context) error

	// Copy transfers src to dst (either direction: local-to-remote for
	// archiving, remote-to-local for restoring).
	Copy(ctx context.Context, src, dst string, opts CopyOptions) error

	// VerifyChecksum checks a local manifest file against the remote
	// copy of the same files, returning a non-nil error on any mismatch.
	// Satisfies checksum.RemoteChecksumVerifier.
	VerifyChecksum(ctx context.Context, manifestPath, remoteURI string, maxDepth int) error

	// Mount exposes uri as a read-only local filesystem at mountpoint.
	Mount(ctx context.Context, uri, mountpoint string) error

	// Unmount tears down a previous Mount.
	Unmount(ctx context.Context, mountpoint string) error

	// WithStorageClass returns a Copier that uploads using class for
	// all subsequent Copy calls, without mutating the receiver (the
	// archive orchestrator uses this to upload the all-files catalog
	// under INTELLIGENT_TIERING regardless of the folder's own class;
	// spec.md §4.9 step 8).
	WithStorageClass(class registry.StorageClass) Copier
}
