// Package metafiles names the five reserved filenames Froster writes
// into every archived folder. All five are skipped when cataloguing and
// counting files; hashing, uploading and deletion skip only the four in
// ContentExcluded, since the packed small-files tar is archived content
// there. Names are taken verbatim from
// the froster Python original's Archiver.__init__ filename constants.
package metafiles

const (
	// AllFilesCSV is the per-folder catalog of every direct child file.
	AllFilesCSV = "Froster.allfiles.csv"

	// SmallFilesTar holds every direct child file packed below the
	// small-file threshold.
	SmallFilesTar = "Froster.smallfiles.tar"

	// Manifest is the post-upload content-hash manifest.
	Manifest = ".froster.md5sum"

	// RestoredManifest is the manifest recomputed after a restore download.
	RestoredManifest = ".froster-restored.md5sum"

	// Placeholder is written into a folder after its originals are deleted.
	Placeholder = "Where-did-the-files-go.txt"
)

// All lists every reserved meta filename, including SmallFilesTar. This
// full set is for operations that touch every meta file Froster ever
// writes, such as the indexer's atime/mtime recompute and Reset's
// cleanup; it is not the right exclusion list for hashing, uploading or
// deleting content, since SmallFilesTar is ordinary archived content
// there, not metadata.
var All = []string{AllFilesCSV, SmallFilesTar, Manifest, RestoredManifest, Placeholder}

// ContentExcluded lists the meta filenames that are never part of a
// folder's archived content: the all-files catalog and the three
// manifest/placeholder bookkeeping files. SmallFilesTar is deliberately
// absent, matching the froster Python original's
// _gen_md5sums/archive_locally/delete_recent_and_archived_files, all of
// which hash, upload and delete the packed small-files tar like any
// other file.
var ContentExcluded = []string{AllFilesCSV, Manifest, RestoredManifest, Placeholder}

// Is reports whether name is one of the reserved meta filenames.
func Is(name string) bool {
	return contains(All, name)
}

// IsContentExcluded reports whether name is excluded from hashing,
// uploading and deletion (see ContentExcluded).
func IsContentExcluded(name string) bool {
	return contains(ContentExcluded, name)
}

func contains(set []string, name string) bool {
	for _, m := range set {
		if name == m {
			return true
		}
	}

	return false
}
