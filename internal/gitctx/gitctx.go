// Package gitctx resolves the repository and commit context the tool
// runs against: owner/repo from git remotes (via go-gh, so it honors the
// same resolution as the gh CLI) and branch/SHA from the local checkout.
package gitctx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/cli/go-gh/v2/pkg/repository"
)

// CurrentRepo returns the owner and name of the repository the working
// directory belongs to.
func CurrentRepo() (owner, repo string, err error) {
	r, err := repository.Current()
	if err != nil {
		return "", "", fmt.Errorf("resolve repository from git remotes: %w", err)
	}
	return r.Owner, r.Name, nil
}

// HeadSHA returns the full SHA of the local HEAD commit.
func HeadSHA(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "git", "rev-parse", "HEAD").Output()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD commit: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// CurrentBranch returns the checked-out branch name, or "" for a
// detached HEAD.
func CurrentBranch(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "git", "branch", "--show-current").Output()
	if err != nil {
		return "", fmt.Errorf("resolve current branch: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// BranchHeadSHA returns the SHA of a branch's remote-tracking ref, which
// is the commit CI actually ran against. Falls back to the local branch
// when no remote-tracking ref exists.
func BranchHeadSHA(ctx context.Context, branch string) (string, error) {
	out, err := exec.CommandContext(ctx, "git", "rev-parse", "origin/"+branch).Output()
	if err != nil {
		out, err = exec.CommandContext(ctx, "git", "rev-parse", branch).Output()
	}
	if err != nil {
		return "", fmt.Errorf("resolve branch %q: %w", branch, err)
	}
	return strings.TrimSpace(string(out)), nil
}
