// Package treewalk implements the top-down directory walk shared by the
// indexer and the recursive archiver, grounded on the froster Python
// original's _walker/_walkerr generator (os.walk with a skip-dirs set
// and a non-fatal error sink).
package treewalk

import (
	"os"
	"path/filepath"
)

// Entry is one directory yielded by Walk: its path, its direct
// subdirectory names (after skip-set pruning) and its direct file names.
type Entry struct {
	Dir     string
	SubDirs []string
	Files   []string
}

// DefaultSkipNames is the default directory skip-set: NetApp/Isilon
// snapshot directories that should never be crawled or archived.
var DefaultSkipNames = []string{".snapshot"}

// ErrorSink receives non-fatal errors encountered while stat'ing a
// child; iteration continues regardless of what it returns.
type ErrorSink func(path string, err error)

// Options configures a Walk.
type Options struct {
	// SkipNames lists directory basenames pruned from the walk. Defaults
	// to DefaultSkipNames when nil.
	SkipNames []string

	// OnError receives stat/read errors for individual children; if nil,
	// such errors are silently dropped.
	OnError ErrorSink

	// OneFileSystem, when true, does not descend into directories whose
	// device id differs from that of root (mirrors pwalk's
	// --one-file-system flag referenced in the froster original).
	OneFileSystem bool
}

// Walk performs a top-down traversal of root, calling visit once per
// directory with its subdirectories and files (after skip-set pruning).
// Returning an error from visit stops the walk and is returned to the
// caller unmodified; stat errors on individual children are reported to
// opts.OnError and do not stop the walk.
func Walk(root string, opts Options, visit func(Entry) error) error {
	skip := opts.SkipNames
	if skip == nil {
		skip = DefaultSkipNames
	}

	skipSet := make(map[string]struct{}, len(skip))
	for _, s := range skip {
		skipSet[s] = struct{}{}
	}

	rootDev, haveRootDev := deviceID(root)

	return walkDir(root, skipSet, opts.OnError, opts.OneFileSystem, rootDev, haveRootDev, visit)
}

func walkDir(dir string, skipSet map[string]struct{}, onError ErrorSink, oneFS bool, rootDev uint64, haveRootDev bool, visit func(Entry) error) error {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if onError != nil {
			onError(dir, err)
		}

		return nil
	}

	var subdirs, files []string

	for _, de := range dirEntries {
		name := de.Name()

		if de.IsDir() {
			if _, skipped := skipSet[name]; skipped {
				continue
			}

			childPath := filepath.Join(dir, name)

			if oneFS && haveRootDev {
				if dev, ok := deviceID(childPath); ok && dev != rootDev {
					continue
				}
			}

			subdirs = append(subdirs, name)

			continue
		}

		info, err := de.Info()
		if err != nil {
			if onError != nil {
				onError(filepath.Join(dir, name), err)
			}

			continue
		}

		if info.Mode().IsRegular() || info.Mode()&os.ModeSymlink != 0 {
			files = append(files, name)
		}
	}

	if err := visit(Entry{Dir: dir, SubDirs: subdirs, Files: files}); err != nil {
		return err
	}

	for _, name := range subdirs {
		if err := walkDir(filepath.Join(dir, name), skipSet, onError, oneFS, rootDev, haveRootDev, visit); err != nil {
			return err
		}
	}

	return nil
}
