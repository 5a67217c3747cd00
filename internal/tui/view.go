package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/rigup/internal/model"
	"github.com/alexisbeaulieu97/rigup/internal/report"
	"github.com/alexisbeaulieu97/rigup/internal/tui/components"
)

// View renders the current state of the model.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render(fmt.Sprintf("rigup • %s", m.displayTitle())))

	progress := components.NewProgress(m.steps.Len()).View(m.completed)
	sections = append(sections, sectionStyle.Render("Progress"), progress)

	entries := m.steps.Entries()
	if len(entries) > 0 {
		sections = append(sections, sectionStyle.Render("Steps"), renderStepEntries(entries))
	}

	data := components.SummaryData{
		Total:     m.steps.Len(),
		Completed: m.completed,
		Counts:    m.counts,
		Finished:  m.finished,
		Cancelled: m.cancelled,
	}
	if m.report != nil {
		data.Status = m.renderer.Status(m.report)
	}
	if summary := components.NewSummary(data).View(); strings.TrimSpace(summary) != "" {
		sections = append(sections, sectionStyle.Render("Summary"), summaryStyle.Render(summary))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

func renderStepEntries(entries []components.StepEntry) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		line := fmt.Sprintf(" %s %s", StatusIcon(entry), entry.Label)
		if entry.State == components.StepDone {
			line = fmt.Sprintf("%s: %s", line, report.OutcomeLabel(entry.Entry.Result.Outcome))
			if entry.Entry.Duration > 0 {
				line = fmt.Sprintf("%s (%s)", line, entry.Entry.Duration.Truncate(10*time.Millisecond))
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (m Model) displayTitle() string {
	if strings.TrimSpace(m.title) != "" {
		return m.title
	}
	return "apply"
}

// StatusIcon returns the glyph representing a step's state.
func StatusIcon(entry components.StepEntry) string {
	switch entry.State {
	case components.StepRunning:
		return runningStyle.Render("⏳")
	case components.StepPending:
		return pendingStyle.Render("…")
	}
	switch entry.Entry.Result.Outcome {
	case model.OutcomeInstalled:
		return successStyle.Render("✓")
	case model.OutcomeAlreadyPresent:
		return presentStyle.Render("✓")
	case model.OutcomeSkipped:
		return skippedStyle.Render("⊘")
	default:
		return failureStyle.Render("✗")
	}
}
