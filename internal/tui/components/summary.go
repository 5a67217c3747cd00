package components

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/rigup/internal/model"
)

// SummaryData aggregates counts for rendering summaries.
type SummaryData struct {
	Total     int
	Completed int
	Counts    model.ReportCounts
	Finished  bool
	Cancelled bool
	// Status is the final run status line, if the run has ended.
	Status string
}

// Summary renders a textual run summary.
type Summary struct {
	data SummaryData
}

// NewSummary creates a new Summary component.
func NewSummary(data SummaryData) Summary {
	return Summary{data: data}
}

// View renders the summary.
func (s Summary) View() string {
	var lines []string
	if s.data.Completed > 0 {
		c := s.data.Counts
		lines = append(lines, fmt.Sprintf("%d installed, %d already present, %d skipped, %d failed",
			c.Installed, c.AlreadyPresent, c.Skipped, c.Failed))
	}

	switch {
	case s.data.Status != "":
		lines = append(lines, s.data.Status)
	case s.data.Cancelled:
		lines = append(lines, "Cancelling after the current step...")
	case s.data.Finished && s.data.Total > 0:
		lines = append(lines, fmt.Sprintf("Finished %d/%d steps", s.data.Completed, s.data.Total))
	}

	return strings.Join(lines, "\n")
}
