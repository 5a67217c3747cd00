// Package report renders run reports and verification summaries as text.
// Rendering is a pure function of its input.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexisbeaulieu97/rigup/internal/model"
	rigerrors "github.com/alexisbeaulieu97/rigup/pkg/errors"
)

// Renderer turns reports into text. The zero value renders plain text.
type Renderer struct {
	color bool
}

// New returns a Renderer. When color is false no ANSI sequences are emitted.
func New(color bool) Renderer {
	return Renderer{color: color}
}

func (r Renderer) style(s lipgloss.Style, text string) string {
	if !r.color {
		return text
	}
	return s.Render(text)
}

func (r Renderer) glyph(g glyph) string {
	if !r.color {
		return g.plain
	}
	return g.style.Render(g.styled)
}

// Run renders one line per executed step followed by the final status.
func (r Renderer) Run(report *model.RunReport) string {
	if report == nil {
		return ""
	}

	var b strings.Builder
	if report.Name != "" {
		b.WriteString(r.style(titleStyle, "rigup • "+report.Name))
		b.WriteByte('\n')
	}

	entries := report.Entries()
	width := labelWidth(entries)
	for _, entry := range entries {
		b.WriteString(r.entryLine(entry, width))
		b.WriteByte('\n')
		if entry.Result.IsFailure() && entry.Result.Reason != nil {
			for _, line := range diagnosticLines(entry.Result.Reason) {
				b.WriteString("      ")
				b.WriteString(r.style(detailStyle, line))
				b.WriteByte('\n')
			}
		}
	}

	b.WriteString(Counts(report.Counts(), report.Duration()))
	b.WriteByte('\n')
	b.WriteString(r.Status(report))
	return b.String()
}

// Status renders "Completed" or "Halted at step N: <cause>".
func (r Renderer) Status(report *model.RunReport) string {
	switch report.State {
	case model.RunCompleted:
		return r.style(doneStyle, "Completed")
	case model.RunHalted:
		return r.style(haltedStyle, fmt.Sprintf("Halted at step %d: %v", report.HaltIndex, haltCause(report)))
	default:
		return string(report.State)
	}
}

func (r Renderer) entryLine(entry model.ReportEntry, width int) string {
	label := entry.Label
	if label == "" {
		label = entry.StepID
	}
	line := fmt.Sprintf("%s %2d. %-*s  %s", r.glyph(outcomeGlyph(entry.Result.Outcome)), entry.Index, width, label, OutcomeLabel(entry.Result.Outcome))
	if entry.BestEffort {
		line += r.style(detailStyle, " (best effort)")
	}
	if entry.Duration > 0 {
		line += r.style(detailStyle, fmt.Sprintf(" %s", entry.Duration.Truncate(10*time.Millisecond)))
	}
	return line
}

// OutcomeLabel returns the human wording for an outcome.
func OutcomeLabel(outcome model.Outcome) string {
	switch outcome {
	case model.OutcomeInstalled:
		return "installed"
	case model.OutcomeAlreadyPresent:
		return "already present"
	case model.OutcomeSkipped:
		return "skipped"
	case model.OutcomeFailed:
		return "failed"
	default:
		return string(outcome)
	}
}

func outcomeGlyph(outcome model.Outcome) glyph {
	switch outcome {
	case model.OutcomeInstalled:
		return glyphInstalled
	case model.OutcomeAlreadyPresent:
		return glyphPresent
	case model.OutcomeSkipped:
		return glyphSkipped
	default:
		return glyphFailed
	}
}

// Counts renders the outcome tally.
func Counts(c model.ReportCounts, elapsed time.Duration) string {
	line := fmt.Sprintf("%d installed, %d already present, %d skipped, %d failed", c.Installed, c.AlreadyPresent, c.Skipped, c.Failed)
	if elapsed > 0 {
		line += fmt.Sprintf(" in %s", elapsed.Truncate(10*time.Millisecond))
	}
	return line
}

// ExitCode maps a report to a process exit status: 0 when the run
// completed, 1 otherwise.
func ExitCode(report *model.RunReport) int {
	if report == nil {
		return 1
	}
	return report.ExitCode()
}

// haltCause prefers the failing step's own reason over the runner's
// wrapper, which already carries the step position.
func haltCause(report *model.RunReport) error {
	for _, entry := range report.Entries() {
		if entry.Index == report.HaltIndex && entry.Result.Reason != nil {
			return entry.Result.Reason
		}
	}
	var execErr *rigerrors.ExecutionError
	if errors.As(report.Cause, &execErr) && execErr.Err != nil {
		return execErr.Err
	}
	if report.Cause == nil {
		return errors.New("unknown cause")
	}
	return report.Cause
}

// diagnosticLines returns installer output beyond the first line, which the
// error message already shows.
func diagnosticLines(err error) []string {
	var installErr *rigerrors.InstallFailedError
	if !errors.As(err, &installErr) || installErr.Diagnostic == "" {
		return []string{err.Error()}
	}
	lines := []string{err.Error()}
	rest := strings.Split(installErr.Diagnostic, "\n")
	if len(rest) > 1 {
		for _, line := range rest[1:] {
			if line = strings.TrimRight(line, "\r "); line != "" {
				lines = append(lines, line)
			}
		}
	}
	const maxLines = 8
	if len(lines) > maxLines {
		lines = append(lines[:maxLines], fmt.Sprintf("... %d more lines", len(lines)-maxLines))
	}
	return lines
}

func labelWidth(entries []model.ReportEntry) int {
	width := 0
	for _, entry := range entries {
		label := entry.Label
		if label == "" {
			label = entry.StepID
		}
		if w := lipgloss.Width(label); w > width {
			width = w
		}
	}
	return width
}
