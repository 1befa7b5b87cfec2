// Package deleter implements the Delete Orchestrator described in
// spec.md §4.11: reverse-verify an archived or restored folder against
// its remote copy, remove the local data, and leave a placeholder
// explaining where it went. Grounded on the froster Python original's
// Archiver.delete_recent_and_archived_files / _write_restore_info,
// which writes the same remote-URI/profile/user/contact-email/tool
// placeholder content.
package deleter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dirkpetersen/froster-go/blobcopy"
	"github.com/dirkpetersen/froster-go/ferrors"
	"github.com/dirkpetersen/froster-go/internal/logging"
	"github.com/dirkpetersen/froster-go/internal/pathutil"
	"github.com/dirkpetersen/froster-go/metafiles"
	"github.com/dirkpetersen/froster-go/registry"
)

var log = logging.Module("froster/deleter")

const toolIdentifier = "froster-go"

// Deleter reverse-verifies and removes previously archived folders.
type Deleter struct {
	Copier   blobcopy.Copier
	Registry *registry.Registry
	User     string
	Email    string
}

// New returns a Deleter wired to copier and reg.
func New(copier blobcopy.Copier, reg *registry.Registry, user, email string) *Deleter {
	return &Deleter{Copier: copier, Registry: reg, User: user, Email: email}
}

// Result reports what Delete did.
type Result struct {
	DeletedFiles    []string
	PlaceholderPath string
}

// Delete runs spec.md §4.11's pipeline over folder.
func (d *Deleter) Delete(ctx context.Context, folder string) (Result, error) {
	logger := log(ctx)

	canon, err := pathutil.Canonicalize([]string{folder})
	if err != nil {
		return Result{}, ferrors.Step("delete", folder, "", errors.Wrap(ferrors.ErrInvalidInput, err.Error()))
	}

	folder = canon[0]

	if !pathutil.ProbeReadWrite(folder).OK() {
		return Result{}, ferrors.Step("delete", folder, "", errors.Wrap(ferrors.ErrPermissionDenied, "folder is not both readable and writable"))
	}

	entry, exact, found := d.Registry.GetNearest(folder)
	if !found {
		return Result{}, ferrors.Step("delete", folder, "", ferrors.ErrNotArchived)
	}

	if !exact && entry.ArchiveMode != registry.Recursive {
		return Result{}, ferrors.Step("delete", folder, "", ferrors.ErrParentNotRecursive)
	}

	manifestPath, err := locateManifest(folder)
	if err != nil {
		return Result{}, ferrors.Step("delete", folder, "", err)
	}

	relTail := strings.TrimPrefix(strings.TrimPrefix(folder, entry.LocalFolder), string(filepath.Separator))

	remoteURI := entry.ArchiveFolder
	if relTail != "" {
		remoteURI += relTail + "/"
	}

	if err := d.Copier.VerifyChecksum(ctx, manifestPath, remoteURI, 1); err != nil {
		return Result{}, ferrors.Step("delete-verify", folder, remoteURI, errors.Wrap(ferrors.ErrDeleteVerificationFailed, err.Error()))
	}

	deleted, err := removeArchivedFiles(folder)
	if err != nil {
		return Result{}, ferrors.Step("delete", folder, "", err)
	}

	placeholderPath, err := d.writePlaceholder(folder, remoteURI, entry, deleted)
	if err != nil {
		return Result{}, ferrors.Step("placeholder", folder, remoteURI, err)
	}

	logger.Infow("deleted folder contents", "folder", folder, "files", len(deleted))

	return Result{DeletedFiles: deleted, PlaceholderPath: placeholderPath}, nil
}

// locateManifest returns whichever of the archived or restored manifest
// is present in folder, preferring the archived manifest.
func locateManifest(folder string) (string, error) {
	for _, name := range []string{metafiles.Manifest, metafiles.RestoredManifest} {
		p := filepath.Join(folder, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", errors.New("no manifest found locally; nothing to verify before deletion")
}

func removeArchivedFiles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	var deleted []string

	for _, e := range entries {
		if e.IsDir() || metafiles.IsContentExcluded(e.Name()) {
			continue
		}

		if err := os.Remove(filepath.Join(folder, e.Name())); err != nil {
			return nil, err
		}

		deleted = append(deleted, e.Name())
	}

	sort.Strings(deleted)

	return deleted, nil
}

func (d *Deleter) writePlaceholder(folder, remoteURI string, entry registry.Entry, deleted []string) (string, error) {
	sample := deleted
	if len(sample) > 10 {
		sample = sample[:10]
	}

	var b strings.Builder

	fmt.Fprintf(&b, "This folder's contents were archived and deleted by %s.\n\n", toolIdentifier)
	fmt.Fprintf(&b, "Remote archive: %s\n", remoteURI)
	fmt.Fprintf(&b, "Profile: %s\n", entry.Profile)
	fmt.Fprintf(&b, "Archived by user: %s\n", entry.User)
	fmt.Fprintf(&b, "Contact: %s\n", d.Email)
	fmt.Fprintf(&b, "Deleted by: %s\n", d.User)
	fmt.Fprintf(&b, "Deleted at: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "\nTo restore this folder, run:\n  froster restore %s\n", folder)

	if len(sample) > 0 {
		fmt.Fprintf(&b, "\nFirst %d deleted file(s):\n", len(sample))

		for _, name := range sample {
			fmt.Fprintf(&b, "  %s\n", name)
		}
	}

	path := filepath.Join(folder, metafiles.Placeholder)

	return path, os.WriteFile(path, []byte(b.String()), 0o644)
}
