package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/irskep/cimonitor/internal/report"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show CI status for the target commit, branch, or PR",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	inv, err := newInvocation(ctx)
	if err != nil {
		return err
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
	rep, err := builder.Build(ctx, t.desc, snap)
	if err != nil {
		return err
	}
	rep.PR = t.pr

	fmt.Print(report.Render(rep, report.RenderOptions{Verbose: inv.cfg.Verbose}))

	if rep.Failed() {
		return ErrCIFailed
	}
	return nil
}
