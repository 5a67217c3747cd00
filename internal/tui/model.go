// Package tui shows live run progress in an interactive terminal.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/rigup/internal/engine"
	"github.com/alexisbeaulieu97/rigup/internal/model"
	"github.com/alexisbeaulieu97/rigup/internal/report"
	"github.com/alexisbeaulieu97/rigup/internal/tui/components"
)

// StepStartMsg indicates a step has started executing.
type StepStartMsg struct {
	Index int
	ID    string
	Time  time.Time
}

// StepFinishedMsg reports that a step has finished.
type StepFinishedMsg struct {
	Entry model.ReportEntry
}

// RunFinishedMsg carries the final report. The program quits on receipt.
type RunFinishedMsg struct {
	Report *model.RunReport
}

// Model contains the Bubbletea state for a provisioning run.
type Model struct {
	title     string
	steps     components.StepList
	counts    model.ReportCounts
	completed int
	finished  bool
	cancelled bool
	report    *model.RunReport
	cancel    context.CancelFunc
	renderer  report.Renderer
}

// NewModel constructs a model for the given steps. cancel, if non-nil, is
// called when the user interrupts the run.
func NewModel(title string, steps []engine.Step, cancel context.CancelFunc) Model {
	ids := make([]string, len(steps))
	labels := make([]string, len(steps))
	for i := range steps {
		ids[i] = steps[i].ID
		labels[i] = steps[i].DisplayName()
	}
	return Model{
		title:    title,
		steps:    components.NewStepList(ids, labels),
		cancel:   cancel,
		renderer: report.New(true),
	}
}

// Init starts the Bubbletea program.
func (m Model) Init() tea.Cmd {
	return nil
}

// TotalSteps returns the total number of steps tracked by the model.
func (m Model) TotalSteps() int {
	return m.steps.Len()
}

// CompletedSteps returns the number of finished steps.
func (m Model) CompletedSteps() int {
	return m.completed
}

// IsFinished reports whether the run has ended.
func (m Model) IsFinished() bool {
	return m.finished
}

// Report returns the final report, once received.
func (m Model) Report() *model.RunReport {
	return m.report
}

func (m *Model) record(entry model.ReportEntry) {
	switch entry.Result.Outcome {
	case model.OutcomeInstalled:
		m.counts.Installed++
	case model.OutcomeAlreadyPresent:
		m.counts.AlreadyPresent++
	case model.OutcomeSkipped:
		m.counts.Skipped++
	case model.OutcomeFailed:
		m.counts.Failed++
	}
	m.completed++
}
