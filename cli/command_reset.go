package cli

import (
	"context"
	"io"
)

type commandReset struct {
	folders []string
	stdout  io.Writer
	stderr  io.Writer
}

func (c *commandReset) setup(svc appServices, parent commandParent) {
	c.stdout = svc.stdout()
	c.stderr = svc.Stderr()

	cmd := parent.Command("reset", "Return a folder to its pristine state by removing meta files and re-expanding any packed tar.")

	cmd.Arg("folder", "Folder(s) to reset").Required().StringsVar(&c.folders)

	cmd.Action(svc.run(c.run))
}

func (c *commandReset) run(ctx context.Context, rt *runtime) error {
	a := rt.archiver()

	var b batch

	for _, folder := range c.folders {
		results, err := a.Reset(folder)
		if err != nil {
			b.fail(c.stderr, folder, err)
			continue
		}

		b.ok()

		defaultColor.Fprintf(c.stdout, "%s:\n", folder) //nolint:errcheck

		for _, r := range results {
			status := "nothing to remove"
			if r.Removed {
				status = "done"
			}

			defaultColor.Fprintf(c.stdout, "  %s: %s\n", r.Name, status) //nolint:errcheck
		}
	}

	return b.err()
}
