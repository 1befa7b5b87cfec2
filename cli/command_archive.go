package cli

import (
	"context"
	"io"

	"github.com/dirkpetersen/froster-go/archiver"
)

type commandArchive struct {
	folders   []string
	recursive bool
	force     bool

	stderr io.Writer
}

func (c *commandArchive) setup(svc appServices, parent commandParent) {
	c.stderr = svc.Stderr()

	cmd := parent.Command("archive", "Pack, checksum, upload and register one or more folders.")

	cmd.Flag("recursive", "Archive every descendant directory, not just the named folder").BoolVar(&c.recursive)
	cmd.Flag("force", "Reset and re-archive a folder that already has a manifest from a failed attempt").BoolVar(&c.force)
	cmd.Arg("folder", "Folder(s) to archive").Required().StringsVar(&c.folders)

	cmd.Action(svc.run(c.run))
}

func (c *commandArchive) run(ctx context.Context, rt *runtime) error {
	logger := log(ctx)
	a := rt.archiver()

	if err := checkNoCollision(c.folders); err != nil {
		return err
	}

	opts := archiver.Options{Force: c.force, Recursive: c.recursive}

	var b batch

	for _, folder := range c.folders {
		if err := a.Archive(ctx, folder, opts); err != nil {
			b.fail(c.stderr, folder, err)
			continue
		}

		b.ok()
		logger.Infof("archived %s", folder)
	}

	return b.err()
}
