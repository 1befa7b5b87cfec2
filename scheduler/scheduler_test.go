package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dirkpetersen/froster-go/scheduler"
)

func TestRenderOrdersSBATCHDirectivesFirst(t *testing.T) {
	s := scheduler.New()
	s.AddLine("export TMPDIR=/tmp")
	s.AddLine("#SBATCH --job-name=froster:archive")
	s.AddLine("#SBATCH --cpus-per-task=4")
	s.AddLine("froster archive /data/project1")

	rendered := s.Render()

	shebangIdx := indexOf(rendered, "#!/bin/bash")
	jobNameIdx := indexOf(rendered, "--job-name")
	cpusIdx := indexOf(rendered, "--cpus-per-task")
	tmpdirIdx := indexOf(rendered, "TMPDIR")
	archiveIdx := indexOf(rendered, "froster archive")

	require.True(t, shebangIdx < jobNameIdx)
	require.True(t, jobNameIdx < cpusIdx)
	require.True(t, cpusIdx < tmpdirIdx)
	require.True(t, tmpdirIdx < archiveIdx)
}

func TestValidateCronRejectsMalformed(t *testing.T) {
	require.NoError(t, scheduler.ValidateCron("0 2 * * *"))
	require.Error(t, scheduler.ValidateCron("not a cron expression"))
}

func TestNextRunsReturnsRequestedCount(t *testing.T) {
	runs, err := scheduler.NextRuns("0 2 * * *", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
