// Package index implements the Indexer described in spec.md §4.5: it
// walks a folder tree, aggregates per-directory size/file-count totals,
// and writes a hotspots CSV of directories that clear configurable
// GiB/MiB-average thresholds. Grounded on the froster Python original's
// pwalk-plus-DuckDB pipeline in Archiver._index_locally.
package index

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dirkpetersen/froster-go/internal/fsstat"
	"github.com/dirkpetersen/froster-go/internal/idlookup"
	"github.com/dirkpetersen/froster-go/internal/treewalk"
	"github.com/dirkpetersen/froster-go/metafiles"
)

// Header is the fixed hotspots CSV header (spec.md §6).
var Header = []string{"User", "AccD", "ModD", "GiB", "MiBAvg", "Folder", "Group", "TiB", "FileCount", "DirSize"}

// AgeBuckets lists the day-count thresholds used to summarize how much
// data has not been touched in N days, oldest first.
var AgeBuckets = []int{5475, 3650, 1825, 1095, 730, 365, 90, 30}

// Thresholds gates which directories are written to the hotspots file.
type Thresholds struct {
	MinGiB    float64
	MinMiBAvg float64
}

// Options configures a Scan.
type Options struct {
	Thresholds    Thresholds
	Cores         int
	OneFileSystem bool
}

// dirTotals accumulates per-directory aggregates during the walk.
type dirTotals struct {
	path       string
	uid        uint32
	gid        uint32
	fileCount  int64
	totalBytes int64
	newestAcc  time.Time
	newestMod  time.Time
}

// AgeSummary reports total bytes not accessed for more than the given
// number of days, for each entry in AgeBuckets.
type AgeSummary struct {
	Days  int
	Bytes int64
}

// Result reports what Scan produced.
type Result struct {
	CSVPath       string
	HotspotCount  int
	TotalBytes    int64
	FoldersWalked int
	AgedBytes     []AgeSummary
}

// Scan walks root and writes a hotspots CSV describing every descendant
// directory whose total size and per-file average clear thresholds.
// dest is the full path of the hotspots CSV to write; if it already
// exists, Scan returns immediately without rescanning (idempotent
// indexing, mirroring the froster original's pwalkcopy short-circuit).
func Scan(root, dest string, opts Options) (Result, error) {
	if _, err := os.Stat(dest); err == nil {
		return Result{CSVPath: dest}, nil
	}

	totals := map[string]*dirTotals{}

	walkOpts := treewalk.Options{
		SkipNames:     treewalk.DefaultSkipNames,
		OneFileSystem: opts.OneFileSystem,
	}

	err := treewalk.Walk(root, walkOpts, func(e treewalk.Entry) error {
		t := &dirTotals{path: e.Dir}

		for _, name := range e.Files {
			if metafiles.Is(name) {
				continue
			}

			st, err := fsstat.Lstat(filepath.Join(e.Dir, name))
			if err != nil {
				continue
			}

			t.fileCount++
			t.totalBytes += st.Size
			t.uid = st.UID
			t.gid = st.GID

			if st.AccessTime.After(t.newestAcc) {
				t.newestAcc = st.AccessTime
			}

			if st.ModTime.After(t.newestMod) {
				t.newestMod = st.ModTime
			}
		}

		totals[e.Dir] = t

		return nil
	})
	if err != nil {
		return Result{}, errors.Wrapf(err, "walking %q", root)
	}

	// Fold each directory's size up into every ancestor, mirroring the
	// pw_dirsum column pwalk produces (a directory's size is the sum of
	// everything beneath it, not just its direct children).
	rollUp(totals, root)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return Result{}, errors.Wrap(err, "creating hotspots directory")
	}

	f, err := os.Create(dest)
	if err != nil {
		return Result{}, errors.Wrap(err, "creating hotspots file")
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(Header); err != nil {
		return Result{}, err
	}

	res := Result{CSVPath: dest, FoldersWalked: len(totals)}
	agedBytes := make([]int64, len(AgeBuckets))

	paths := make([]string, 0, len(totals))
	for p := range totals {
		paths = append(paths, p)
	}

	sort.Slice(paths, func(i, j int) bool { return totals[paths[i]].totalBytes > totals[paths[j]].totalBytes })

	for _, p := range paths {
		t := totals[p]

		giB := float64(t.totalBytes) / (1 << 30)
		miBAvg := 0.0

		if t.fileCount > 0 {
			miBAvg = float64(t.totalBytes) / (1 << 20) / float64(t.fileCount)
		}

		if giB < opts.Thresholds.MinGiB || miBAvg < opts.Thresholds.MinMiBAvg {
			continue
		}

		accDays := daysAgo(t.newestAcc)
		modDays := daysAgo(t.newestMod)

		row := []string{
			idlookup.User(t.uid),
			strconv.Itoa(accDays),
			strconv.Itoa(modDays),
			strconv.Itoa(int(giB)),
			strconv.Itoa(int(miBAvg)),
			p,
			idlookup.Group(t.gid),
			strconv.Itoa(int(float64(t.totalBytes) / (1 << 40))),
			strconv.FormatInt(t.fileCount, 10),
			strconv.FormatInt(t.totalBytes, 10),
		}

		if err := writer.Write(row); err != nil {
			return Result{}, err
		}

		res.HotspotCount++
		res.TotalBytes += t.totalBytes

		for i, days := range AgeBuckets {
			if accDays > days {
				agedBytes[i] += t.totalBytes
			}
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return Result{}, err
	}

	for i, days := range AgeBuckets {
		if agedBytes[i] > 0 {
			res.AgedBytes = append(res.AgedBytes, AgeSummary{Days: days, Bytes: agedBytes[i]})
		}
	}

	return res, nil
}

// rollUp folds each directory's own size/count totals into every
// ancestor, so that a directory's totalBytes ends up meaning
// "everything beneath it" the way pwalk's pw_dirsum column does.
// newestAcc/newestMod are deliberately left untouched here: spec.md
// §4.5 scans direct children only for a hotspot's reported AccD/ModD,
// mirroring the froster original's non-recursive
// _get_newest_file_atime/_get_newest_file_mtime (each directory's
// newest-access/newest-modified is already set from its own direct
// children in the walk callback above). Deepest directories must be
// folded into their parents before those parents are themselves folded
// further up, so paths are processed deepest-first rather than in
// arbitrary map order.
func rollUp(totals map[string]*dirTotals, root string) {
	paths := make([]string, 0, len(totals))
	for p := range totals {
		paths = append(paths, p)
	}

	depth := func(p string) int { return strings.Count(p, string(filepath.Separator)) }
	sort.Slice(paths, func(i, j int) bool { return depth(paths[i]) > depth(paths[j]) })

	for _, p := range paths {
		if p == root {
			continue
		}

		t := totals[p]
		parent, ok := totals[filepath.Dir(p)]

		if !ok {
			continue
		}

		parent.totalBytes += t.totalBytes
		parent.fileCount += t.fileCount
	}
}

func daysAgo(t time.Time) int {
	if t.IsZero() {
		return 0
	}

	return int(time.Since(t).Hours() / 24)
}

// HotspotsFilename derives the hotspots CSV filename for folder, using
// the mount point it lives under to build a "@mountname+relative+path"
// name (separators replaced by "+"), center-eliding it to 255 bytes the
// same way the froster original's _get_hotspots_file does so the
// filename never exceeds common filesystem name-length limits.
func HotspotsFilename(folder string) string {
	sep := string(filepath.Separator)
	name := strings.ReplaceAll(folder, sep, "+") + ".csv"

	for _, mnt := range treewalk.MountBoundaries() {
		if strings.HasPrefix(folder, mnt.MountPoint) {
			trail := treewalk.LastPathSegment(mnt.MountPoint)
			rel := strings.TrimPrefix(strings.TrimPrefix(folder, mnt.MountPoint), sep)
			name = "@" + trail + "+" + strings.ReplaceAll(rel, sep, "+") + ".csv"
		}
	}

	if len(name) > 255 {
		name = name[:25] + "....." + name[len(name)-225:]
	}

	return name
}
