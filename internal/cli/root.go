// Package cli wires the cimonitor commands: status, logs, and watch.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/irskep/cimonitor/internal/config"
)

// ErrCIFailed signals a nonzero exit without an error message: the
// report itself already told the user what failed.
var ErrCIFailed = errors.New("ci failed")

var (
	flagRepo    string
	flagBranch  string
	flagCommit  string
	flagPR      int
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cimonitor",
	Short: "Inspect and watch GitHub Actions CI runs",
	Long: `cimonitor reports structured CI status for a commit, branch, or pull
request: per-job conclusions, failing steps with error-filtered log
excerpts, and an optional watch mode that polls until the run finishes
and can re-trigger failed jobs to separate flaky failures from real ones.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// SetVersion is called by main with the build's version string.
func SetVersion(v string) {
	rootCmd.Version = v
}

func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	if !errors.Is(err, ErrCIFailed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return 1
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagRepo, "repo", "R", "", "repository in owner/repo format (default: current directory's origin)")
	pf.StringVar(&flagBranch, "branch", "", "check the latest run on a branch")
	pf.StringVar(&flagCommit, "commit", "", "check runs for a commit SHA")
	pf.IntVar(&flagPR, "pr", 0, "check runs for a pull request")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "verbose diagnostics on stderr")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(watchCmd)
}

func buildConfig() (config.Config, error) {
	cfg := config.Config{
		Target: config.Target{
			Commit: flagCommit,
			Branch: flagBranch,
			PR:     flagPR,
		},
		Verbose: flagVerbose,
	}

	if flagRepo != "" {
		parts := strings.SplitN(flagRepo, "/", 2)
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return cfg, fmt.Errorf("repo must be in owner/repo format")
		}
		cfg.Owner, cfg.Repo = parts[0], parts[1]
	}

	return cfg, nil
}

func verbosef(format string, args ...interface{}) {
	if flagVerbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
