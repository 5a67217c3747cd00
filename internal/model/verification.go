package model

import "time"

// VerificationResult is the probe-only view of a single step.
type VerificationResult struct {
	StepID   string
	Label    string
	Kind     Kind
	Presence PresenceResult
	Skipped  bool
	// Details is an optional preview of what installing would change.
	Details  string
	Duration time.Duration
}

// VerificationSummary aggregates a probe-only pass over all steps.
type VerificationSummary struct {
	Total    int
	Present  int
	Absent   int
	Skipped  int
	Results  []VerificationResult
	Duration time.Duration
}

// Add appends a result and updates counters.
func (s *VerificationSummary) Add(result VerificationResult) {
	s.Results = append(s.Results, result)
	s.Total++
	switch {
	case result.Skipped:
		s.Skipped++
	case result.Presence == Present:
		s.Present++
	default:
		s.Absent++
	}
}

// AllPresent reports whether every non-skipped step is already satisfied.
func (s *VerificationSummary) AllPresent() bool {
	return s.Absent == 0
}

// ExitCode returns 0 when nothing needs installing, 1 otherwise.
func (s *VerificationSummary) ExitCode() int {
	if s.AllPresent() {
		return 0
	}
	return 1
}
