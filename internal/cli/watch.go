package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/irskep/cimonitor/internal/model"
	"github.com/irskep/cimonitor/internal/report"
	"github.com/irskep/cimonitor/internal/tui"
	"github.com/irskep/cimonitor/internal/ui"
	"github.com/irskep/cimonitor/internal/watch"
)

var (
	flagInterval     time.Duration
	flagTimeout      time.Duration
	flagUntilFailure bool
	flagRetries      int
	flagInteractive  bool
	flagCancelRun    bool
	flagRunID        int64
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the run until it completes, optionally retrying failed jobs",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.DurationVar(&flagInterval, "interval", watch.DefaultInterval, "poll interval")
	f.DurationVar(&flagTimeout, "timeout", watch.DefaultTimeout, "overall watch ceiling")
	f.BoolVar(&flagUntilFailure, "until-failure", false, "stop at the first failed job instead of waiting for siblings")
	f.IntVar(&flagRetries, "retry", 0, "re-trigger each failed job up to N times")
	f.BoolVar(&flagInteractive, "interactive", false, "live status view instead of line-by-line output")
	f.BoolVar(&flagCancelRun, "cancel", false, "cancel the run's remaining jobs once the watch reports failure")
	f.Int64Var(&flagRunID, "run-id", 0, "watch a specific run instead of resolving one from the target")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	inv, err := newInvocation(ctx)
	if err != nil {
		return err
	}
	var t target
	var src watch.StatusSource
	if flagRunID > 0 {
		src = watch.NewRunSource(inv.client, flagRunID)
		t = target{desc: fmt.Sprintf("run %d", flagRunID)}
	} else {
		t, err = inv.resolveTarget(ctx)
		if err != nil {
			return err
		}
		src = watch.NewCommitSource(inv.client, t.sha)
		if t.sha == "" {
			src = watch.NewBranchSource(inv.client, inv.cfg.Target.Branch)
		}
	}

	cfg := watch.Config{
		Interval:   flagInterval,
		Timeout:    flagTimeout,
		Grace:      watch.DefaultGrace,
		FailFast:   flagUntilFailure,
		MaxRetries: flagRetries,
	}
	var dispatch watch.Dispatcher
	if flagRetries > 0 {
		dispatch = watch.NewJobDispatcher(inv.client)
	}

	var res watch.Result
	if flagInteractive {
		res, err = tui.Watch(ctx, t.desc, func(ctx context.Context, hooks watch.Hooks) (watch.Result, error) {
			return watch.NewSession(src, dispatch, cfg, hooks).Run(ctx)
		})
	} else {
		session := watch.NewSession(src, dispatch, cfg, plainHooks())
		res, err = session.Run(ctx)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if flagCancelRun && res.Outcome == model.OutcomeFailure && res.Final.Run.ID != 0 && !res.Final.Run.Completed() {
		if cerr := inv.client.CancelRun(ctx, res.Final.Run.ID); cerr != nil {
			verbosef("cancel run %d: %v", res.Final.Run.ID, cerr)
		} else {
			fmt.Println(ui.StyleMuted.Render("cancelled remaining jobs"))
		}
	}

	builder := report.NewBuilder(inv.client, inv.logCache)
	rep, rerr := builder.Build(ctx, t.desc, res.Final)
	if rerr != nil {
		// A cancelled context can no longer fetch logs; report what we
		// have from polling alone.
		rep = &report.Report{Target: t.desc, Run: res.Final.Run, Outcome: res.Outcome}
		for _, j := range res.Final.Jobs {
			rep.Jobs = append(rep.Jobs, report.Job{Job: j})
		}
	}
	rep.PR = t.pr
	rep.Outcome = res.Outcome
	rep.Watch = &report.Watch{Outcome: res.Outcome, Polls: res.Polls, Retries: res.Retries}

	fmt.Print(report.Render(rep, report.RenderOptions{Verbose: inv.cfg.Verbose}))

	if rep.Failed() {
		return ErrCIFailed
	}
	return nil
}

// plainHooks prints one status line per job on every poll.
func plainHooks() watch.Hooks {
	return watch.Hooks{
		OnPoll: func(snap model.Snapshot) {
			if snap.Run.ID == 0 {
				fmt.Println(ui.StyleMuted.Render("waiting for a workflow run to be registered..."))
				return
			}
			for _, j := range snap.Jobs {
				c := string(j.Conclusion)
				if c == "" {
					c = string(j.Status)
				}
				fmt.Printf("%s %s %s\n", ui.StatusIcon(c), j.Name, ui.ConclusionStyle(c).Render(c))
			}
			fmt.Println()
		},
		OnRetry: func(j model.Job, attempt int) {
			fmt.Println(ui.StyleWarning.Render(fmt.Sprintf("retrying %s (attempt %d)", j.Name, attempt)))
		},
		OnRetryError: func(j model.Job, err error) {
			fmt.Println(ui.StyleMuted.Render(fmt.Sprintf("retry request for %s rejected: %v", j.Name, err)))
		},
	}
}
