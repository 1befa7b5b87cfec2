// Package checksum computes and verifies the per-folder content-hash
// manifest described in spec.md §4.3. Hashing is MD5 (the froster
// Python original's md5sum, spec.md's "128-bit, block size 4 KiB"
// content hash) computed by a bounded worker pool, grounded on the
// original's ThreadPoolExecutor(max_workers=max(4,cores)) pattern and
// on golang.org/x/sync/errgroup's bounded-concurrency idiom as used in
// the teacher's repo/blob/rclone tests.
package checksum

import (
	"bufio"
	"context"
	"crypto/md5" //nolint:gosec // format-contract hash, not a security boundary
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/dirkpetersen/froster-go/metafiles"
)

// blockSize is the read buffer size used while hashing; it does not
// change the digest, only I/O granularity, but is pinned at 4 KiB to
// match the content-hash block size spec.md calls out as part of the
// on-disk format contract.
const blockSize = 4096

// MinWorkers is the floor on hashing-pool parallelism, regardless of
// how few cores are requested (spec.md §5: "floor 4 for hashing pools").
const MinWorkers = 4

// Entry is one line of a manifest: a file's basename and its hex digest.
type Entry struct {
	Digest   string
	Basename string
}

// HashFile computes the content hash of path and returns it lower-case hex encoded.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New() //nolint:gosec
	buf := make([]byte, blockSize)

	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// ComputeManifest hashes every direct-child regular file of dir (excluding
// manifestName itself and the non-content meta files in
// metafiles.ContentExcluded; the packed small-files tar, if present, is
// hashed like ordinary content), writes manifestName in dir in
// "<hex>  <basename>\n" format, and returns the path written. Hashing
// runs on a pool of max(MinWorkers, cores) workers. An empty result (no
// qualifying files) is a failure, and any partial/zero-byte manifest file
// is removed before returning.
func ComputeManifest(ctx context.Context, dir, manifestName string, cores int) (string, error) {
	workers := cores
	if workers < MinWorkers {
		workers = MinWorkers
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrapf(err, "reading directory %q", dir)
	}

	var names []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		name := e.Name()
		if name == manifestName || metafiles.IsContentExcluded(name) {
			continue
		}

		info, err := e.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		names = append(names, name)
	}

	manifestPath := filepath.Join(dir, manifestName)

	if len(names) == 0 {
		return "", errors.Errorf("no files to hash in %q", dir)
	}

	digests := make([]string, len(names))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, name := range names {
		i, name := i, name

		group.Go(func() error {
			if groupCtx.Err() != nil {
				return groupCtx.Err()
			}

			digest, err := HashFile(filepath.Join(dir, name))
			if err != nil {
				return errors.Wrapf(err, "hashing %q", name)
			}

			digests[i] = digest

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return "", err
	}

	if err := writeManifest(manifestPath, names, digests); err != nil {
		os.Remove(manifestPath)
		return "", err
	}

	info, err := os.Stat(manifestPath)
	if err != nil {
		return "", err
	}

	if info.Size() == 0 {
		os.Remove(manifestPath)
		return "", errors.Errorf("manifest %q is empty", manifestPath)
	}

	return manifestPath, nil
}

func writeManifest(path string, names, digests []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	for i, name := range names {
		if _, err := fmt.Fprintf(w, "%s  %s\n", digests[i], name); err != nil {
			return err
		}
	}

	return w.Flush()
}

// ReadManifest parses a manifest file, returning one Entry per line.
func ReadManifest(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []Entry

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}

		idx := -1
		for i := 0; i+1 < len(line); i++ {
			if line[i] == ' ' && line[i+1] == ' ' {
				idx = i
				break
			}
		}

		if idx < 0 {
			return nil, errors.Errorf("malformed manifest line %q", line)
		}

		entries = append(entries, Entry{Digest: line[:idx], Basename: line[idx+2:]})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Basename < entries[j].Basename })

	return entries, nil
}

// RemoteChecksumVerifier is implemented by object-store copiers able to
// verify a local manifest's digests against the objects present at a
// remote URI (spec.md §4.3 verifyAgainstRemote / §4.6 verifyChecksum).
type RemoteChecksumVerifier interface {
	VerifyChecksum(ctx context.Context, manifestPath, remoteURI string, maxDepth int) error
}

// VerifyAgainstRemote verifies manifestPath against remoteURI at depth 1,
// the single-folder, non-recursive verification spec.md §4.3 requires.
func VerifyAgainstRemote(ctx context.Context, verifier RemoteChecksumVerifier, manifestPath, remoteURI string) error {
	return verifier.VerifyChecksum(ctx, manifestPath, remoteURI, 1)
}
