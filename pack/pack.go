// Package pack implements the small-file packer described in spec.md
// §4.4: it tars every direct-child file below a size threshold into a
// gzip-compressed Froster.smallfiles.tar and writes
// Froster.allfiles.csv describing every direct-child file, tarred or
// not. Grounded on the froster Python original's
// _gen_allfiles_and_tar / _untar_files.
package pack

import (
	"archive/tar"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"

	"github.com/dirkpetersen/froster-go/internal/fsstat"
	"github.com/dirkpetersen/froster-go/internal/idlookup"
	"github.com/dirkpetersen/froster-go/metafiles"
)

// CSVHeader is the fixed header row of Froster.allfiles.csv (spec.md §6).
var CSVHeader = []string{"File", "Size(bytes)", "Date-Modified", "Date-Accessed", "Owner", "Group", "Permissions", "Tarred"}

const dateLayout = "2006-01-02 15:04:05"

// Result reports what Pack did.
type Result struct {
	CSVPath  string
	TarPath  string
	Tarred   []string
	NotTarred []string
}

// Pack enumerates the direct-child regular files of dir (excluding the
// meta-file set), writes Froster.allfiles.csv describing all of them,
// and tars every file under thresholdKiB*1024 bytes into a
// gzip-compressed Froster.smallfiles.tar, removing each original after
// it is tarred. If packSmall is false, no file is tarred and no tar is
// created. If no file qualifies for tarring, any tar file is removed so
// its absence unambiguously means "nothing was packed" (spec.md §4.4).
func Pack(dir string, thresholdKiB int64, packSmall bool) (Result, error) {
	csvPath := filepath.Join(dir, metafiles.AllFilesCSV)
	tarPath := filepath.Join(dir, metafiles.SmallFilesTar)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{}, errors.Wrapf(err, "reading directory %q", dir)
	}

	csvFile, err := os.Create(csvPath)
	if err != nil {
		return Result{}, errors.Wrap(err, "creating all-files catalog")
	}
	defer csvFile.Close()

	writer := csv.NewWriter(csvFile)
	if err := writer.Write(CSVHeader); err != nil {
		return Result{}, err
	}

	var tarFile *os.File

	var gzWriter *gzip.Writer

	var tarWriter *tar.Writer

	if packSmall {
		tarFile, err = os.Create(tarPath)
		if err != nil {
			return Result{}, errors.Wrap(err, "creating small-files tar")
		}

		gzWriter = gzip.NewWriter(tarFile)
		tarWriter = tar.NewWriter(gzWriter)
	}

	res := Result{CSVPath: csvPath, TarPath: tarPath}
	threshold := thresholdKiB * 1024

	for _, e := range entries {
		if e.IsDir() {
			continue
		}

		name := e.Name()
		if metafiles.Is(name) {
			continue
		}

		info, err := e.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		filePath := filepath.Join(dir, name)

		st, err := fsstat.Lstat(filePath)
		if err != nil {
			return Result{}, errors.Wrapf(err, "stat %q", filePath)
		}

		tarred := "No"

		if packSmall && st.Size < threshold {
			if err := addToTar(tarWriter, filePath, name, st); err != nil {
				return Result{}, errors.Wrapf(err, "tarring %q", name)
			}

			if err := os.Remove(filePath); err != nil {
				return Result{}, errors.Wrapf(err, "removing packed file %q", name)
			}

			tarred = "Yes"
			res.Tarred = append(res.Tarred, name)
		} else {
			res.NotTarred = append(res.NotTarred, name)
		}

		row := []string{
			name,
			strconv.FormatInt(st.Size, 10),
			st.ModTime.Local().Format(dateLayout),
			st.AccessTime.Local().Format(dateLayout),
			idlookup.User(st.UID),
			idlookup.Group(st.GID),
			fmt.Sprintf("0%o", st.Mode.Perm()),
			tarred,
		}

		if err := writer.Write(row); err != nil {
			return Result{}, err
		}
	}

	writer.Flush()

	if err := writer.Error(); err != nil {
		return Result{}, err
	}

	if packSmall {
		if err := tarWriter.Close(); err != nil {
			return Result{}, errors.Wrap(err, "closing small-files tar")
		}

		if err := gzWriter.Close(); err != nil {
			return Result{}, errors.Wrap(err, "closing small-files tar compressor")
		}

		if err := tarFile.Close(); err != nil {
			return Result{}, err
		}

		if len(res.Tarred) == 0 {
			os.Remove(tarPath)
			res.TarPath = ""
		}
	} else {
		res.TarPath = ""
	}

	return res, nil
}

func addToTar(w *tar.Writer, filePath, arcname string, st fsstat.Stat) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	hdr := &tar.Header{
		Name:    arcname,
		Mode:    int64(st.Mode.Perm()),
		Size:    st.Size,
		ModTime: st.ModTime,
	}

	if err := w.WriteHeader(hdr); err != nil {
		return err
	}

	_, err = io.Copy(w, f)

	return err
}

// Unpack extracts Froster.smallfiles.tar into dir, if present, and then
// removes the tar. A missing tar is a no-op success (nothing was ever
// packed). recursive additionally unpacks every descendant directory's
// tar; non-recursive only unpacks dir itself.
func Unpack(dir string, recursive bool) error {
	if !recursive {
		return unpackOne(dir)
	}

	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() {
			return nil
		}

		return unpackOne(path)
	})
}

func unpackOne(dir string) error {
	tarPath := filepath.Join(dir, metafiles.SmallFilesTar)

	f, err := os.Open(tarPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrap(err, "opening small-files tar compressor")
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}

		if err != nil {
			return err
		}

		target := filepath.Join(dir, hdr.Name)

		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
		if err != nil {
			if os.IsPermission(err) {
				return errors.Wrapf(err, "permission denied extracting %q", target)
			}

			return err
		}

		if _, err := io.Copy(out, tr); err != nil {
			out.Close()
			return err
		}

		out.Close()
	}

	f.Close()

	return os.Remove(tarPath)
}

// ListTarredNames returns the basenames of every file the all-files
// catalog marks Tarred=Yes, so packed content can be listed without
// re-reading the tar itself (mirrors
// the froster original's _get_tar_content, which prefers the CSV's
// Tarred flag over enumerating tar members).
func ListTarredNames(dir string) ([]string, error) {
	csvPath := filepath.Join(dir, metafiles.AllFilesCSV)

	f, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	fileCol, tarredCol := -1, -1

	for i, h := range header {
		switch h {
		case "File":
			fileCol = i
		case "Tarred":
			tarredCol = i
		}
	}

	if fileCol < 0 || tarredCol < 0 {
		return nil, errors.Errorf("unexpected all-files catalog header in %q", csvPath)
	}

	var names []string

	for _, row := range rows[1:] {
		if row[tarredCol] == "Yes" {
			names = append(names, row[fileCol])
		}
	}

	return names, nil
}
