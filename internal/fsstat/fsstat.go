// Package fsstat extracts the size/mtime/atime/owner/group/mode fields
// the all-files catalog and hotspots indexer need, grounded on the
// froster Python original's _get_file_stats (lstat-based, so it
// describes the symlink itself rather than its target).
package fsstat

import (
	"os"
	"time"
)

// Stat holds the per-file metadata recorded in the all-files catalog.
type Stat struct {
	Size       int64
	ModTime    time.Time
	AccessTime time.Time
	UID        uint32
	GID        uint32
	Mode       os.FileMode
}

// Lstat returns the Stat for path without following a trailing symlink,
// mirroring os.lstat(filepath).
func Lstat(path string) (Stat, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return Stat{}, err
	}

	s := Stat{
		Size:    info.Size(),
		ModTime: info.ModTime(),
		Mode:    info.Mode(),
	}

	fillPlatform(&s, info)

	return s, nil
}
