package model

// Snapshot is one poll's complete view of a run and its jobs. It is
// rebuilt wholesale on every refresh rather than patched incrementally.
type Snapshot struct {
	Run  Run
	Jobs []Job
}

// Outcome is the derived conclusion of a whole run: failure if any job
// failed, success only if every job succeeded, pending while any job has
// not reached a terminal state.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeSuccess   Outcome = "success"
	OutcomeFailure   Outcome = "failure"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeTimedOut  Outcome = "timed_out"
)

func (s Snapshot) Outcome() Outcome {
	if len(s.Jobs) == 0 {
		if !s.Run.Completed() {
			return OutcomePending
		}
		return conclusionOutcome(s.Run.Conclusion)
	}

	failed := false
	cancelled := false
	for _, j := range s.Jobs {
		if !j.Completed() {
			return OutcomePending
		}
		switch j.Conclusion {
		case ConclusionFailure, ConclusionTimedOut:
			failed = true
		case ConclusionCancelled:
			cancelled = true
		}
	}
	if failed {
		return OutcomeFailure
	}
	if cancelled {
		return OutcomeCancelled
	}
	return OutcomeSuccess
}

// FailedJobs returns the jobs with a failing conclusion, in API order.
func (s Snapshot) FailedJobs() []Job {
	var failed []Job
	for _, j := range s.Jobs {
		if j.Failed() {
			failed = append(failed, j)
		}
	}
	return failed
}

func conclusionOutcome(c RunConclusion) Outcome {
	switch c {
	case ConclusionSuccess:
		return OutcomeSuccess
	case ConclusionCancelled:
		return OutcomeCancelled
	case ConclusionFailure, ConclusionTimedOut:
		return OutcomeFailure
	default:
		return OutcomePending
	}
}
