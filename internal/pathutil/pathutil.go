// Package pathutil provides path canonicalization, read/write probing,
// and recursive-collision detection shared by every orchestrator,
// grounded on the froster Python original's _check_path_permissions,
// _is_correct_files_folders_permissions and _is_recursive_collision
// helpers, and on the teacher's own plain fmt.Errorf style for
// low-level filesystem helpers (blob/filesystem.go).
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Canonicalize resolves symlinks and strips trailing separators from each
// of paths, returning the absolute, canonical form. Fails with a wrapped
// error if any path cannot be resolved.
func Canonicalize(paths []string) ([]string, error) {
	out := make([]string, 0, len(paths))

	for _, p := range paths {
		expanded, err := expandHome(p)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", p, err)
		}

		abs, err := filepath.Abs(expanded)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", p, err)
		}

		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", p, err)
		}

		out = append(out, strings.TrimRight(resolved, string(filepath.Separator)))
	}

	return out, nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if p == "~" {
		return home, nil
	}

	return filepath.Join(home, p[2:]), nil
}

// ReadWrite reports whether path is readable and writable by the caller.
type ReadWrite struct {
	Readable bool
	Writable bool
}

// OK reports whether both Readable and Writable are true.
func (rw ReadWrite) OK() bool { return rw.Readable && rw.Writable }

// ProbeReadWrite reports the read/write access bits for path.
func ProbeReadWrite(path string) ReadWrite {
	return ReadWrite{
		Readable: unixAccess(path, readBit),
		Writable: unixAccess(path, writeBit),
	}
}

// ProbeTree probes path and, when recursive is true, every descendant
// directory and regular file underneath it. It returns the first
// unusable path found, or "" if every entry is both readable and writable.
func ProbeTree(path string, recursive bool) (unusable string, ok bool) {
	if !ProbeReadWrite(path).OK() {
		return path, false
	}

	if !recursive {
		entries, err := os.ReadDir(path)
		if err != nil {
			return path, false
		}

		for _, e := range entries {
			if e.IsDir() {
				continue
			}

			fp := filepath.Join(path, e.Name())
			if !ProbeReadWrite(fp).OK() {
				return fp, false
			}
		}

		return "", true
	}

	unusable = ""

	err := filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			unusable = p
			return filepath.SkipAll
		}

		if !ProbeReadWrite(p).OK() {
			unusable = p
			return filepath.SkipAll
		}

		return nil
	})
	if err != nil || unusable != "" {
		return unusable, false
	}

	return "", true
}

// DetectRecursiveCollision reports whether any pair of folders has one
// folder equal to, or an ancestor of, the other -- the condition under
// which recursive operations targeting both would race or double-process.
func DetectRecursiveCollision(folders []string) bool {
	for i := range folders {
		for j := i + 1; j < len(folders); j++ {
			if isAncestorOrEqual(folders[i], folders[j]) || isAncestorOrEqual(folders[j], folders[i]) {
				return true
			}
		}
	}

	return false
}

func isAncestorOrEqual(ancestor, other string) bool {
	ancestor = strings.TrimRight(ancestor, string(filepath.Separator))
	other = strings.TrimRight(other, string(filepath.Separator))

	if ancestor == other {
		return true
	}

	rel, err := filepath.Rel(ancestor, other)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
