package model

// PresenceResult is the answer of a presence probe. It is derived fresh on
// each probe call and never cached across steps.
type PresenceResult int

const (
	// Absent means the resource is missing or its presence could not be determined.
	Absent PresenceResult = iota
	// Present means the resource already satisfies the desired state.
	Present
)

func (p PresenceResult) String() string {
	if p == Present {
		return "present"
	}
	return "absent"
}

// Outcome classifies how a step finished.
type Outcome string

const (
	// OutcomeInstalled means the installer ran and brought the resource to present.
	OutcomeInstalled Outcome = "installed"
	// OutcomeAlreadyPresent means no install was needed.
	OutcomeAlreadyPresent Outcome = "already_present"
	// OutcomeSkipped means the step was excluded from the run.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means the installer failed.
	OutcomeFailed Outcome = "failed"
)

// InstallResult is the outcome of a single step evaluation.
type InstallResult struct {
	Outcome Outcome
	Message string
	// Reason is set only for OutcomeFailed.
	Reason error
}

// Installed builds a successful install result.
func Installed(message string) InstallResult {
	return InstallResult{Outcome: OutcomeInstalled, Message: message}
}

// AlreadyPresent builds a no-op result.
func AlreadyPresent(message string) InstallResult {
	return InstallResult{Outcome: OutcomeAlreadyPresent, Message: message}
}

// Skipped builds a result for a step excluded from the run.
func Skipped(message string) InstallResult {
	return InstallResult{Outcome: OutcomeSkipped, Message: message}
}

// Failed builds a failure result carrying reason.
func Failed(reason error) InstallResult {
	res := InstallResult{Outcome: OutcomeFailed, Reason: reason}
	if reason != nil {
		res.Message = reason.Error()
	}
	return res
}

// IsFailure reports whether the result is a failure.
func (r InstallResult) IsFailure() bool {
	return r.Outcome == OutcomeFailed
}

// Satisfied reports whether the resource ended the step in the present state.
func (r InstallResult) Satisfied() bool {
	return r.Outcome == OutcomeInstalled || r.Outcome == OutcomeAlreadyPresent
}
