package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/irskep/cimonitor/internal/api"
	"github.com/irskep/cimonitor/internal/cache"
	"github.com/irskep/cimonitor/internal/config"
	"github.com/irskep/cimonitor/internal/gitctx"
	"github.com/irskep/cimonitor/internal/model"
)

const (
	cacheSizeMB = 200
	cacheTTL    = 24 * time.Hour
)

// invocation bundles the state one command execution owns: resolved
// config, API client, and the log cache. Nothing survives past the
// command.
type invocation struct {
	cfg      config.Config
	client   *api.Client
	logCache *cache.LogCache
}

func newInvocation(ctx context.Context) (*invocation, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	if cfg.Owner == "" {
		owner, repo, err := gitctx.CurrentRepo()
		if err != nil {
			return nil, fmt.Errorf("no -R flag and %w", err)
		}
		cfg.Owner, cfg.Repo = owner, repo
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	verbosef("repository: %s", cfg.RepoNWO())

	client, err := api.NewClient(cfg.Owner, cfg.Repo)
	if err != nil {
		return nil, err
	}

	cacheDir := filepath.Join(os.TempDir(), "cimonitor", "logs")
	logCache, err := cache.NewLogCache(cacheDir, cacheSizeMB, cacheTTL)
	if err != nil {
		// The cache is a convenience; run without it.
		verbosef("log cache unavailable: %v", err)
		logCache = nil
	} else if err := logCache.Evict(); err != nil {
		verbosef("log cache eviction: %v", err)
	}

	return &invocation{cfg: cfg, client: client, logCache: logCache}, nil
}

// target resolves what to look at: the head SHA to find runs for, the
// PR (when targeting one, for the mergeability check), and a human
// description for the report header.
type target struct {
	sha  string
	pr   *model.PullRequest
	desc string
}

func (inv *invocation) resolveTarget(ctx context.Context) (target, error) {
	t := inv.cfg.Target

	switch {
	case t.IsPR():
		pr, err := inv.client.GetPullRequest(ctx, t.PR)
		if err != nil {
			return target{}, err
		}
		return target{
			sha:  pr.Head.SHA,
			pr:   pr,
			desc: fmt.Sprintf("PR #%d (%s)", pr.Number, pr.Title),
		}, nil

	case t.Commit != "":
		return target{sha: t.Commit, desc: "commit " + model.ShortSHA(t.Commit)}, nil

	case t.Branch != "":
		// A local branch gives us the head SHA directly; a remote-only
		// branch is matched by name when listing runs instead.
		if sha, err := gitctx.BranchHeadSHA(ctx, t.Branch); err == nil {
			return target{sha: sha, desc: fmt.Sprintf("branch %s @ %s", t.Branch, model.ShortSHA(sha))}, nil
		}
		return target{desc: "branch " + t.Branch}, nil

	default:
		branch, err := gitctx.CurrentBranch(ctx)
		if err != nil {
			return target{}, err
		}
		sha, err := gitctx.HeadSHA(ctx)
		if err != nil {
			return target{}, err
		}
		desc := fmt.Sprintf("branch %s @ %s", branch, model.ShortSHA(sha))
		if branch == "" {
			desc = "commit " + model.ShortSHA(sha)
		}
		return target{sha: sha, desc: desc}, nil
	}
}

// snapshot fetches the latest run for the target plus its jobs,
// wholesale. Returns an empty snapshot when no run exists yet.
func (inv *invocation) snapshot(ctx context.Context, t target) (model.Snapshot, error) {
	filter := api.RunsFilter{HeadSHA: t.sha, PerPage: 10}
	if t.sha == "" {
		filter = api.RunsFilter{Branch: inv.cfg.Target.Branch, PerPage: 10}
	}

	runs, err := inv.client.ListRuns(ctx, filter)
	if err != nil {
		return model.Snapshot{}, err
	}
	if len(runs.Runs) == 0 {
		return model.Snapshot{}, nil
	}

	run := runs.Runs[0]
	verbosef("run %d (%s), attempt %d", run.ID, run.Name, run.RunAttempt)
	jobs, err := inv.client.ListJobs(ctx, run.ID)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Snapshot{Run: run, Jobs: jobs.Jobs}, nil
}
