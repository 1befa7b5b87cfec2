package cli

import (
	"context"
	"io"
)

// commandRegistry groups the registry-inspection subcommands under
// "froster registry", the way the teacher groups "blob"/"content"
// subcommands under a parent command.
type commandRegistry struct {
	list commandRegistryList
}

func (c *commandRegistry) setup(svc appServices, parent commandParent) {
	cmd := parent.Command("registry", "Inspect the local archive registry.")
	c.list.setup(svc, cmd)
}

type commandRegistryList struct {
	columns []string
	stdout  io.Writer
}

func (c *commandRegistryList) setup(svc appServices, parent commandParent) {
	c.stdout = svc.stdout()

	cmd := parent.Command("list", "List every archive registry entry as CSV, newest first.")
	cmd.Flag("column", "Columns to include (repeatable); defaults to all").StringsVar(&c.columns)

	cmd.Action(svc.run(c.run))
}

func (c *commandRegistryList) run(ctx context.Context, rt *runtime) error {
	csvText, err := rt.reg.ToCSV(c.columns)
	if err != nil {
		return err
	}

	_, err = io.WriteString(c.stdout, csvText)

	return err
}
