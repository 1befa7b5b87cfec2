// Package archiver implements the Archive Orchestrator described in
// spec.md §4.9: for each folder it packs small files, computes a
// manifest, uploads folder contents and the all-files catalog, verifies
// the upload, and registers the folder (once, at the top level of a
// recursive archive). Grounded on the froster Python original's
// Archiver.archive_directory, which runs exactly this sequence per
// folder and defers the registry write to the top-level call only.
package archiver

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dirkpetersen/froster-go/blobcopy"
	"github.com/dirkpetersen/froster-go/checksum"
	"github.com/dirkpetersen/froster-go/config"
	"github.com/dirkpetersen/froster-go/ferrors"
	"github.com/dirkpetersen/froster-go/internal/logging"
	"github.com/dirkpetersen/froster-go/internal/pathutil"
	"github.com/dirkpetersen/froster-go/internal/treewalk"
	"github.com/dirkpetersen/froster-go/metafiles"
	"github.com/dirkpetersen/froster-go/pack"
	"github.com/dirkpetersen/froster-go/registry"
)

var log = logging.Module("froster/archiver")

// Options configures one Archive call.
type Options struct {
	Force     bool
	Recursive bool
}

// Archiver packs, hashes, uploads and registers folders.
type Archiver struct {
	Copier   blobcopy.Copier
	Registry *registry.Registry
	Config   config.Config
	User     string
}

// New returns an Archiver wired to copier, reg and cfg.
func New(copier blobcopy.Copier, reg *registry.Registry, cfg config.Config, user string) *Archiver {
	return &Archiver{Copier: copier, Registry: reg, Config: cfg, User: user}
}

// Archive runs the per-folder pipeline over folder. When opts.Recursive
// is set, every descendant directory is archived too, but only folder
// itself receives a registry entry (with archive_mode=Recursive);
// descendants are found afterward via the registry's parent-chain
// lookup (spec.md §4.9 "Recursion").
func (a *Archiver) Archive(ctx context.Context, folder string, opts Options) error {
	logger := log(ctx)

	canon, err := pathutil.Canonicalize([]string{folder})
	if err != nil {
		return ferrors.Step("archive", folder, "", errors.Wrap(ferrors.ErrInvalidInput, err.Error()))
	}

	folder = canon[0]

	if !pathutil.ProbeReadWrite(folder).OK() {
		return ferrors.Step("archive", folder, "", errors.Wrap(ferrors.ErrPermissionDenied, "folder is not both readable and writable"))
	}

	if err := a.Copier.Probe(ctx); err != nil {
		return ferrors.Step("probe", folder, "", errors.Wrap(ferrors.ErrPermissionDenied, err.Error()))
	}

	if opts.Recursive {
		var dirs []string

		err := treewalk.Walk(folder, treewalk.Options{SkipNames: treewalk.DefaultSkipNames}, func(e treewalk.Entry) error {
			dirs = append(dirs, e.Dir)
			return nil
		})
		if err != nil {
			return ferrors.Step("walk", folder, "", err)
		}

		for _, dir := range dirs {
			topLevel := dir == folder

			if err := a.archiveOne(ctx, dir, opts, topLevel, registry.Recursive); err != nil {
				return err
			}
		}

		logger.Infow("recursive archive complete", "folder", folder, "directories", len(dirs))

		return nil
	}

	return a.archiveOne(ctx, folder, opts, true, registry.Single)
}

func (a *Archiver) archiveOne(ctx context.Context, folder string, opts Options, topLevel bool, mode registry.ArchiveMode) error {
	logger := log(ctx)

	if _, exact := a.exactEntry(folder); exact {
		return ferrors.Step("archive", folder, "", ferrors.ErrAlreadyArchived)
	}

	manifestPath := filepath.Join(folder, metafiles.Manifest)

	if _, err := os.Stat(manifestPath); err == nil {
		if !opts.Force {
			return ferrors.Step("archive", folder, "", ferrors.ErrAlreadyPrepared)
		}

		if _, err := a.Reset(folder); err != nil {
			return ferrors.Step("reset", folder, "", err)
		}
	}

	empty, err := dirHasNoArchivableFiles(folder)
	if err != nil {
		return ferrors.Step("archive", folder, "", err)
	}

	if empty {
		logger.Infow("skipping empty folder", "folder", folder)
		return nil
	}

	if _, err := pack.Pack(folder, a.Config.SmallFileThresholdKiB, a.Config.PackSmallFiles); err != nil {
		return ferrors.Step("pack", folder, "", errors.Wrap(ferrors.ErrPackFailed, err.Error()))
	}

	if _, err := checksum.ComputeManifest(ctx, folder, metafiles.Manifest, a.Config.Cores); err != nil {
		return ferrors.Step("manifest", folder, "", errors.Wrap(ferrors.ErrManifestFailed, err.Error()))
	}

	remoteURI := a.remoteURI(folder)

	if err := a.Copier.Copy(ctx, folder, remoteURI, blobcopy.CopyOptions{
		MaxDepth:       1,
		FollowSymlinks: true,
		Exclude:        metafiles.ContentExcluded,
	}); err != nil {
		return ferrors.Step("upload", folder, remoteURI, errors.Wrap(ferrors.ErrUploadFailed, err.Error()))
	}

	csvPath := filepath.Join(folder, metafiles.AllFilesCSV)
	csvCopier := a.Copier.WithStorageClass(registry.IntelligentTiering)

	if err := csvCopier.Copy(ctx, csvPath, remoteURI+metafiles.AllFilesCSV, blobcopy.CopyOptions{}); err != nil {
		return ferrors.Step("upload-catalog", folder, remoteURI, errors.Wrap(ferrors.ErrUploadFailed, err.Error()))
	}

	if err := checksum.VerifyAgainstRemote(ctx, a.Copier, filepath.Join(folder, metafiles.Manifest), remoteURI); err != nil {
		return ferrors.Step("verify", folder, remoteURI, errors.Wrap(ferrors.ErrVerificationFailed, err.Error()))
	}

	if topLevel {
		now := time.Now()

		if err := a.Registry.Put(folder, registry.Entry{
			LocalFolder:      folder,
			ArchiveFolder:    remoteURI,
			StorageClass:     a.Config.StorageClass,
			Profile:          a.Config.Profile,
			ArchiveMode:      mode,
			Timestamp:        now,
			TimestampArchive: now,
			User:             a.User,
		}); err != nil {
			return ferrors.Step("register", folder, remoteURI, err)
		}
	}

	logger.Infow("archived folder", "folder", folder, "remote", remoteURI)

	return nil
}

// exactEntry reports whether the registry has an entry whose
// local_folder is exactly folder (as opposed to an ancestor matched via
// recursive-mode fallback), since step 1 of the orchestrator only
// rejects an exact re-archive.
func (a *Archiver) exactEntry(folder string) (registry.Entry, bool) {
	entry, ok := a.Registry.Get(folder)
	if ok && entry.LocalFolder == folder {
		return entry, true
	}

	return registry.Entry{}, false
}

// remoteURI builds ":s3:<bucket>/<prefix>/<mirrored-absolute-path>/"
// for folder (spec.md §3 Archive Entry).
func (a *Archiver) remoteURI(folder string) string {
	trimmed := strings.TrimPrefix(folder, string(filepath.Separator))
	prefix := strings.Trim(a.Config.Prefix, "/")

	uri := ":s3:" + a.Config.Bucket + "/"
	if prefix != "" {
		uri += prefix + "/"
	}

	return uri + trimmed + "/"
}

// ResetFileResult reports what happened to one meta file during a
// Reset call, mirroring the froster original's reset_folder, which
// prints "done" or "nothing to remove" per file rather than a single
// pass/fail for the whole folder.
type ResetFileResult struct {
	Name    string
	Removed bool
}

// Reset returns folder to its pristine state (spec.md §4.9 "Reset"):
// any packed small-files tar is re-expanded, then all five meta files
// are removed, without touching the original data.
func (a *Archiver) Reset(folder string) ([]ResetFileResult, error) {
	if err := pack.Unpack(folder, false); err != nil {
		return nil, errors.Wrap(err, "re-expanding packed small files")
	}

	results := make([]ResetFileResult, 0, len(metafiles.All))

	for _, name := range metafiles.All {
		err := os.Remove(filepath.Join(folder, name))
		results = append(results, ResetFileResult{Name: name, Removed: err == nil})
	}

	return results, nil
}

func dirHasNoArchivableFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}

	for _, e := range entries {
		if e.IsDir() || metafiles.Is(e.Name()) {
			continue
		}

		return false, nil
	}

	return true, nil
}
