package cli

import (
	"context"
	"io"
)

type commandDelete struct {
	folders []string

	stderr io.Writer
}

func (c *commandDelete) setup(svc appServices, parent commandParent) {
	c.stderr = svc.Stderr()

	cmd := parent.Command("delete", "Reverse-verify and remove the local copy of an archived folder.")

	cmd.Arg("folder", "Folder(s) to delete").Required().StringsVar(&c.folders)

	cmd.Action(svc.run(c.run))
}

func (c *commandDelete) run(ctx context.Context, rt *runtime) error {
	logger := log(ctx)
	d := rt.deleter()

	if err := checkNoCollision(c.folders); err != nil {
		return err
	}

	var b batch

	for _, folder := range c.folders {
		res, err := d.Delete(ctx, folder)
		if err != nil {
			b.fail(c.stderr, folder, err)
			continue
		}

		b.ok()
		logger.Infof("deleted %d file(s) in %s, placeholder at %s", len(res.DeletedFiles), folder, res.PlaceholderPath)
	}

	return b.err()
}
