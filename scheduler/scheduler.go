// Package scheduler submits archive/index jobs to an external batch
// scheduler and validates the cron expressions used for periodic
// indexing runs. Grounded on the froster Python original's
// SlurmEssentials class: building a #SBATCH script line-by-line,
// reordering directives to the top, and shelling out to sbatch/squeue.
package scheduler

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/cronexpr"
	"github.com/pkg/errors"
)

// Script accumulates the lines of a batch submission script, keeping
// #SBATCH directives separated from the body so they can be emitted
// together at the top regardless of the order AddLine was called in
// (mirrors _reorder_sbatch_lines).
type Script struct {
	lines []string
}

// New returns an empty Script.
func New() *Script {
	return &Script{}
}

// AddLine appends line to the script body. Empty lines are ignored.
func (s *Script) AddLine(line string) {
	if line == "" {
		return
	}

	s.lines = append(s.lines, line)
}

// Render produces the full script text: a shebang, every #SBATCH
// directive (in the order added), then every other line.
func (s *Script) Render() string {
	var sbatch, body []string

	for _, l := range s.lines {
		if strings.HasPrefix(l, "#SBATCH") {
			sbatch = append(sbatch, l)
		} else {
			body = append(body, l)
		}
	}

	var b strings.Builder
	b.WriteString("#!/bin/bash\n")

	for _, l := range sbatch {
		b.WriteString(l)
		b.WriteByte('\n')
	}

	for _, l := range body {
		b.WriteString(l)
		b.WriteByte('\n')
	}

	return b.String()
}

// Submit pipes the rendered script to sbatch's stdin and returns the
// numeric job ID sbatch prints on success.
func Submit(ctx context.Context, s *Script) (int, error) {
	cmd := exec.CommandContext(ctx, "sbatch")
	cmd.Stdin = strings.NewReader(s.Render())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, errors.Wrapf(err, "sbatch failed: %s", strings.TrimSpace(stderr.String()))
	}

	fields := strings.Fields(stdout.String())
	if len(fields) == 0 {
		return 0, errors.New("sbatch produced no output")
	}

	jobID, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, errors.Wrapf(err, "parsing sbatch job id from %q", stdout.String())
	}

	return jobID, nil
}

// ValidateCron parses a cron expression (cronexpr's 5-, 6- or 7-field
// syntax), returning an error
// naming the problem if it is malformed. Used to validate a
// periodic-indexing schedule before it is handed to an external cron
// runner.
func ValidateCron(expr string) error {
	_, err := cronexpr.Parse(expr)
	return err
}

// NextRuns returns the next n scheduled times for a cron expression
// after from.
func NextRuns(expr string, from time.Time, n int) ([]time.Time, error) {
	e, err := cronexpr.Parse(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing cron expression %q", expr)
	}

	return e.NextN(from, uint(n)), nil
}
