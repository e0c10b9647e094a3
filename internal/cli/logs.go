package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/irskep/cimonitor/internal/correlate"
	"github.com/irskep/cimonitor/internal/errfilter"
	"github.com/irskep/cimonitor/internal/logs"
	"github.com/irskep/cimonitor/internal/report"
)

var (
	flagJobID       int64
	flagRaw         bool
	flagStepFilter  string
	flagGroupFilter string
	flagShowGroups  bool
	flagNoGroups    bool
	flagMarkers     []string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show error-filtered logs for failing steps",
	Args:  cobra.NoArgs,
	RunE:  runLogs,
}

func init() {
	f := logsCmd.Flags()
	f.Int64Var(&flagJobID, "job-id", 0, "dump the raw log for one job and exit")
	f.BoolVar(&flagRaw, "raw", false, "show full step content instead of error excerpts")
	f.StringVar(&flagStepFilter, "step-filter", "", "only include steps whose name contains this substring")
	f.StringVar(&flagGroupFilter, "group-filter", "", "only include log groups whose name contains this substring")
	f.BoolVar(&flagShowGroups, "show-groups", false, "list matched log groups under each step")
	f.BoolVar(&flagNoGroups, "no-groups", false, "drop group structure and keep flat content lines")
	f.StringSliceVar(&flagMarkers, "error-marker", nil, "override the error line markers (repeatable)")
}

func runLogs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	inv, err := newInvocation(ctx)
	if err != nil {
		return err
	}

	// A specific job ID bypasses target resolution entirely.
	if flagJobID > 0 {
		return dumpJobLog(cmd, inv)
	}

	t, err := inv.resolveTarget(ctx)
	if err != nil {
		return err
	}
	snap, err := inv.snapshot(ctx, t)
	if err != nil {
		return err
	}

	builder := report.NewBuilder(inv.client, inv.logCache)
	builder.Filter = errfilter.NewWithMarkers(flagMarkers, errfilter.ContextBefore)
	builder.Options = correlate.Options{
		StepFilter:   flagStepFilter,
		GroupFilter:  flagGroupFilter,
		NoGroups:     flagNoGroups,
		FailuresOnly: !flagRaw,
	}
	builder.AllJobs = flagRaw

	rep, err := builder.Build(ctx, t.desc, snap)
	if err != nil {
		return err
	}
	rep.PR = t.pr

	fmt.Print(report.Render(rep, report.RenderOptions{
		ShowGroups: flagShowGroups,
		Raw:        flagRaw,
		Verbose:    inv.cfg.Verbose,
	}))

	if rep.Failed() {
		return ErrCIFailed
	}
	return nil
}

func dumpJobLog(cmd *cobra.Command, inv *invocation) error {
	ctx := cmd.Context()

	job, err := inv.client.GetJob(ctx, flagJobID)
	if err != nil {
		return err
	}
	raw, err := inv.client.JobRawLog(ctx, flagJobID)
	if err != nil {
		return err
	}

	fmt.Printf("Raw logs for job %d: %s (%s)\n", job.ID, job.Name, job.Conclusion)
	fmt.Println(strings.Repeat("-", 72))
	for _, line := range strings.Split(raw, "\n") {
		fmt.Println(logs.StripTimestamp(line))
	}
	return nil
}
