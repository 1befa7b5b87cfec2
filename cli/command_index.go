package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/dirkpetersen/froster-go/index"
)

type commandIndex struct {
	folders       []string
	minGiB        float64
	minMiBAvg     float64
	cores         int
	oneFileSystem bool

	stdout io.Writer
	stderr io.Writer
}

func (c *commandIndex) setup(svc appServices, parent commandParent) {
	c.stdout = svc.stdout()
	c.stderr = svc.Stderr()

	cmd := parent.Command("index", "Scan a folder tree and write a hotspots CSV of its largest, oldest directories.")

	cmd.Flag("min-gib", "Only list directories with at least this many GiB").Default("1").Float64Var(&c.minGiB)
	cmd.Flag("min-mib-avg", "Only list directories whose per-file average is at least this many MiB").Default("0").Float64Var(&c.minMiBAvg)
	cmd.Flag("cores", "Worker count; not used by the scan, which stats files on a single goroutine").Default("4").IntVar(&c.cores)
	cmd.Flag("one-file-system", "Do not cross mount points while scanning").BoolVar(&c.oneFileSystem)
	cmd.Arg("folder", "Folder(s) to index").Required().StringsVar(&c.folders)

	cmd.Action(svc.run(c.run))
}

func (c *commandIndex) run(ctx context.Context, rt *runtime) error {
	logger := log(ctx)

	opts := index.Options{
		Thresholds:    index.Thresholds{MinGiB: c.minGiB, MinMiBAvg: c.minMiBAvg},
		Cores:         c.cores,
		OneFileSystem: c.oneFileSystem,
	}

	var b batch

	for _, folder := range c.folders {
		hotspotsDir := rt.cfg.HotspotsDir
		if hotspotsDir == "" {
			hotspotsDir = folder
		}

		dest := filepath.Join(hotspotsDir, index.HotspotsFilename(folder))

		res, err := index.Scan(folder, dest, opts)
		if err != nil {
			b.fail(c.stderr, folder, err)
			continue
		}

		b.ok()

		logger.Infof("indexed %s: %d hotspot(s) out of %d directories, %d bytes total", folder, res.HotspotCount, res.FoldersWalked, res.TotalBytes)

		defaultColor.Fprintf(c.stdout, "%s -> %s\n", folder, res.CSVPath) //nolint:errcheck

		for _, bucket := range res.AgedBytes {
			noteColor.Fprintf(c.stdout, "  not accessed in %d+ days: %.2f TiB\n", bucket.Days, float64(bucket.Bytes)/(1<<40)) //nolint:errcheck
		}
	}

	return b.err()
}
