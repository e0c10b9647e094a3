package model

// Mergeability is the point-in-time merge state of a pull request.
type Mergeability string

const (
	Mergeable   Mergeability = "mergeable"
	Conflicting Mergeability = "conflicting"
	// MergeUnknown means GitHub has not finished computing mergeability.
	MergeUnknown Mergeability = "unknown"
)

type PullRequest struct {
	Number         int    `json:"number"`
	Title          string `json:"title"`
	State          string `json:"state"`
	Head           GitRef `json:"head"`
	Mergeable      *bool  `json:"mergeable"`
	MergeableState string `json:"mergeable_state"`
	HTMLURL        string `json:"html_url"`
}

type GitRef struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// Mergeability maps GitHub's mergeable/mergeable_state pair onto a
// three-way answer. mergeable is null while GitHub is still computing.
func (pr PullRequest) Mergeability() Mergeability {
	if pr.Mergeable == nil {
		return MergeUnknown
	}
	if *pr.Mergeable {
		return Mergeable
	}
	if pr.MergeableState == "dirty" {
		return Conflicting
	}
	// mergeable=false for non-conflict reasons (blocked, behind) is not a
	// merge conflict.
	return MergeUnknown
}

func (pr PullRequest) HasConflict() bool {
	return pr.Mergeability() == Conflicting
}
