package model

import "time"

// RunState is the lifecycle state of a provisioning run.
type RunState string

const (
	RunPending   RunState = "pending"
	RunRunning   RunState = "running"
	RunHalted    RunState = "halted"
	RunCompleted RunState = "completed"
)

// ReportEntry records the outcome of one step.
type ReportEntry struct {
	// Index is the 1-based position of the step in declaration order.
	Index      int
	StepID     string
	Label      string
	Kind       Kind
	BestEffort bool
	Result     InstallResult
	Duration   time.Duration
	Timestamp  time.Time
}

// ReportCounts aggregates outcomes across a report.
type ReportCounts struct {
	Installed      int
	AlreadyPresent int
	Skipped        int
	Failed         int
}

// RunReport is the append-only record of a single run. It is owned by the
// runner for the duration of the run.
type RunReport struct {
	Name      string
	RunID     string
	State     RunState
	HaltIndex int
	Cause     error
	Started   time.Time
	Finished  time.Time

	entries []ReportEntry
}

// NewRunReport creates an empty report in the pending state.
func NewRunReport(name, runID string) *RunReport {
	return &RunReport{Name: name, RunID: runID, State: RunPending}
}

// Append records a step outcome.
func (r *RunReport) Append(entry ReportEntry) {
	r.entries = append(r.entries, entry)
}

// Entries returns a copy of the recorded entries in execution order.
func (r *RunReport) Entries() []ReportEntry {
	out := make([]ReportEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of recorded entries.
func (r *RunReport) Len() int {
	return len(r.entries)
}

// MarkHalted moves the report to the halted state at the given 1-based index.
func (r *RunReport) MarkHalted(index int, cause error) {
	r.State = RunHalted
	r.HaltIndex = index
	r.Cause = cause
	r.Finished = time.Now()
}

// MarkCompleted moves the report to the completed state.
func (r *RunReport) MarkCompleted() {
	r.State = RunCompleted
	r.Finished = time.Now()
}

// Counts tallies outcomes.
func (r *RunReport) Counts() ReportCounts {
	var c ReportCounts
	for _, e := range r.entries {
		switch e.Result.Outcome {
		case OutcomeInstalled:
			c.Installed++
		case OutcomeAlreadyPresent:
			c.AlreadyPresent++
		case OutcomeSkipped:
			c.Skipped++
		case OutcomeFailed:
			c.Failed++
		}
	}
	return c
}

// ExitCode maps the final state to a process exit code.
func (r *RunReport) ExitCode() int {
	if r.State == RunCompleted {
		return 0
	}
	return 1
}

// Duration returns the wall time of the run, if finished.
func (r *RunReport) Duration() time.Duration {
	if r.Started.IsZero() || r.Finished.IsZero() {
		return 0
	}
	return r.Finished.Sub(r.Started)
}
