package cli

import (
	"context"
	"io"

	"github.com/dirkpetersen/froster-go/glacier"
	"github.com/dirkpetersen/froster-go/restorer"
)

type commandRestore struct {
	folders       []string
	recursive     bool
	noDownload    bool
	retrievalTier string
	retentionDays int

	stdout io.Writer
	stderr io.Writer
}

func (c *commandRestore) setup(svc appServices, parent commandParent) {
	c.stdout = svc.stdout()
	c.stderr = svc.Stderr()

	cmd := parent.Command("restore", "Trigger a Glacier restore if needed, then download and unpack a folder.")

	cmd.Flag("recursive", "Restore every descendant directory of folder, not just folder itself").BoolVar(&c.recursive)
	cmd.Flag("no-download", "Only trigger the Glacier restore; do not download once it is ready").BoolVar(&c.noDownload)
	cmd.Flag("retrieval-tier", "Glacier retrieval tier: Bulk, Standard or Expedited").Default("Bulk").StringVar(&c.retrievalTier)
	cmd.Flag("retention-days", "Days the restored copy stays available before it reverts to cold storage").Default("30").IntVar(&c.retentionDays)
	cmd.Arg("folder", "Folder(s) to restore").Required().StringsVar(&c.folders)

	cmd.Action(svc.run(c.run))
}

func (c *commandRestore) run(ctx context.Context, rt *runtime) error {
	logger := log(ctx)
	r := rt.restorer()

	if err := checkNoCollision(c.folders); err != nil {
		return err
	}

	opts := restorer.Options{
		Recursive:        c.recursive,
		SuppressDownload: c.noDownload,
		RetrievalTier:    glacier.RetrievalTier(c.retrievalTier),
		RetentionDays:    c.retentionDays,
	}

	var b batch

	for _, folder := range c.folders {
		res, err := r.Restore(ctx, folder, opts)
		if err != nil {
			b.fail(c.stderr, folder, err)
			continue
		}

		b.ok()

		if res.Pending > 0 {
			noteColor.Fprintf(c.stdout, "%s: %d object(s) still thawing from Glacier; re-run restore later\n", folder, res.Pending) //nolint:errcheck
			continue
		}

		logger.Infof("restored %s", folder)
	}

	return b.err()
}
