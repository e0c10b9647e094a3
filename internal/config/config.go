// Package config holds the per-invocation settings assembled from flags.
package config

import "fmt"

// Target selects what to inspect: a commit SHA, a branch head, or a pull
// request. The three selectors are mutually exclusive; all empty means
// the current branch's head commit.
type Target struct {
	Commit string
	Branch string
	PR     int
}

func (t Target) Validate() error {
	set := 0
	if t.Commit != "" {
		set++
	}
	if t.Branch != "" {
		set++
	}
	if t.PR > 0 {
		set++
	}
	if set > 1 {
		return fmt.Errorf("--commit, --branch and --pr are mutually exclusive")
	}
	return nil
}

func (t Target) IsPR() bool { return t.PR > 0 }

type Config struct {
	Owner  string
	Repo   string
	Target Target

	Verbose bool
}

func (c Config) RepoNWO() string {
	return fmt.Sprintf("%s/%s", c.Owner, c.Repo)
}

func (c Config) Validate() error {
	if c.Owner == "" || c.Repo == "" {
		return fmt.Errorf("owner and repo are required (use -R owner/repo or run inside a clone)")
	}
	return c.Target.Validate()
}
