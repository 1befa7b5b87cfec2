// Package registry implements the Archive Registry described in
// spec.md §4.8: a single JSON document mapping absolute local folder
// paths to archive entries, with parent-chain lookup for recursive
// entries. Grounded on the froster Python original's
// Archiver._archive_json_add_entry / archive_json_get_row /
// archive_json_get_csv, which maintain the same whole-file-replacement
// JSON document keyed by folder path.
package registry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dirkpetersen/froster-go/ferrors"
)

// ArchiveMode is whether an entry covers exactly one directory or every
// descendant directory beneath it.
type ArchiveMode string

const (
	Single    ArchiveMode = "Single"
	Recursive ArchiveMode = "Recursive"
)

// StorageClass is the remote storage tier an entry was archived into.
type StorageClass string

const (
	DeepArchive         StorageClass = "DEEP_ARCHIVE"
	Glacier             StorageClass = "GLACIER"
	IntelligentTiering  StorageClass = "INTELLIGENT_TIERING"
)

// Entry is one record in the registry (spec.md §3).
type Entry struct {
	LocalFolder      string       `json:"local_folder"`
	ArchiveFolder    string       `json:"archive_folder"`
	StorageClass     StorageClass `json:"s3_storage_class"`
	Profile          string       `json:"profile"`
	ArchiveMode      ArchiveMode  `json:"archive_mode"`
	Timestamp        time.Time    `json:"timestamp"`
	TimestampArchive time.Time    `json:"timestamp_archive"`
	User             string       `json:"user"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// Registry is a JSON-backed archive entry store at a fixed path.
type Registry struct {
	path string
}

// Open returns a Registry bound to path. The file need not exist yet;
// it is created on the first Put.
func Open(path string) *Registry {
	return &Registry{path: path}
}

func (r *Registry) load() (map[string]Entry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Entry{}, nil
		}

		return nil, errors.Wrapf(err, "reading registry %q", r.path)
	}

	if len(data) == 0 {
		return map[string]Entry{}, nil
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(ferrors.ErrRegistryCorrupt, "%q: %v", r.path, err)
	}

	return entries, nil
}

// Put writes entry under folder's canonical path, overwriting any prior
// entry for that exact path. It refuses to write if the existing
// registry file is present but unparseable (spec.md's corruption
// policy): the caller must move the corrupt file aside first.
func (r *Registry) Put(folder string, entry Entry) error {
	entries, err := r.load()
	if err != nil {
		return err
	}

	entries[folder] = entry

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return errors.Wrap(err, "creating registry directory")
	}

	return os.WriteFile(r.path, data, 0o644)
}

// Get returns the entry whose local_folder exactly matches folder if
// one exists; otherwise it walks folder's parent chain and returns the
// nearest ancestor entry with archive_mode == Recursive. Corruption in
// the underlying file is treated as "no entry" (read operations degrade
// to not-found rather than propagating an error), matching the spec's
// corruption policy for reads.
func (r *Registry) Get(folder string) (Entry, bool) {
	entries, err := r.load()
	if err != nil {
		return Entry{}, false
	}

	if e, ok := entries[folder]; ok {
		return e, true
	}

	for parent := filepath.Dir(folder); parent != folder && parent != "." && parent != string(filepath.Separator); {
		if e, ok := entries[parent]; ok && e.ArchiveMode == Recursive {
			return e, true
		}

		next := filepath.Dir(parent)
		if next == parent {
			break
		}

		folder, parent = parent, next
	}

	return Entry{}, false
}

// GetNearest returns the entry whose local_folder exactly matches
// folder, or — failing that — the nearest ancestor entry regardless of
// its archive_mode, plus whether the match was exact. Callers that must
// distinguish "no archive entry at all" from "an ancestor entry exists
// but does not cover this descendant" (the restore and delete
// orchestrators' ParentNotRecursive check, spec.md §4.10 step 2) use
// this instead of Get, which silently drops non-recursive ancestors.
func (r *Registry) GetNearest(folder string) (entry Entry, exact, found bool) {
	entries, err := r.load()
	if err != nil {
		return Entry{}, false, false
	}

	if e, ok := entries[folder]; ok {
		return e, true, true
	}

	for parent := filepath.Dir(folder); parent != folder && parent != "." && parent != string(filepath.Separator); {
		if e, ok := entries[parent]; ok {
			return e, false, true
		}

		next := filepath.Dir(parent)
		if next == parent {
			break
		}

		folder, parent = parent, next
	}

	return Entry{}, false, false
}

// DefaultColumns lists every projectable Entry field, in the froster
// original's archive_json_get_csv column order.
var DefaultColumns = []string{
	"local_folder", "archive_folder", "s3_storage_class", "profile",
	"archive_mode", "timestamp", "timestamp_archive", "user",
}

// ToCSV renders the registry as CSV text, sorted by timestamp
// descending, projecting only the requested Entry JSON field names in
// columns (DefaultColumns if columns is empty).
func (r *Registry) ToCSV(columns []string) (string, error) {
	if len(columns) == 0 {
		columns = DefaultColumns
	}

	entries, err := r.load()
	if err != nil {
		return "", err
	}

	rows := make([]Entry, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, e)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Timestamp.After(rows[j].Timestamp) })

	var b strings.Builder
	b.WriteString(strings.Join(columns, ","))
	b.WriteByte('\n')

	for _, e := range rows {
		values := projectColumns(e, columns)
		b.WriteString(strings.Join(values, ","))
		b.WriteByte('\n')
	}

	return b.String(), nil
}

func projectColumns(e Entry, columns []string) []string {
	fields := map[string]string{
		"local_folder":      e.LocalFolder,
		"archive_folder":    e.ArchiveFolder,
		"s3_storage_class":  string(e.StorageClass),
		"profile":           e.Profile,
		"archive_mode":      string(e.ArchiveMode),
		"timestamp":         e.Timestamp.Format(time.RFC3339),
		"timestamp_archive": e.TimestampArchive.Format(time.RFC3339),
		"user":              e.User,
	}

	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = fields[c]
	}

	return out
}
