package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/rigup/internal/model"
)

// Verification renders a probe-only pass: one line per step, pending
// changes indented beneath absent steps, then a tally.
func (r Renderer) Verification(summary *model.VerificationSummary) string {
	if summary == nil {
		return ""
	}

	var b strings.Builder
	for i, res := range summary.Results {
		label := res.Label
		if label == "" {
			label = res.StepID
		}

		g, status := glyphPresent, "present"
		switch {
		case res.Skipped:
			g, status = glyphSkipped, "skipped"
		case res.Presence != model.Present:
			g, status = glyphAbsent, "absent"
		}
		fmt.Fprintf(&b, "%s %2d. %s  %s\n", r.glyph(g), i+1, label, status)

		if details := strings.TrimRight(res.Details, "\n"); details != "" && !res.Skipped {
			for _, line := range strings.Split(details, "\n") {
				b.WriteString("      ")
				b.WriteString(r.style(detailStyle, line))
				b.WriteByte('\n')
			}
		}
	}

	tally := fmt.Sprintf("%d present, %d absent, %d skipped", summary.Present, summary.Absent, summary.Skipped)
	if summary.Duration > 0 {
		tally += fmt.Sprintf(" in %s", summary.Duration.Truncate(10*time.Millisecond))
	}
	b.WriteString(tally)
	b.WriteByte('\n')
	if summary.AllPresent() {
		b.WriteString(r.style(doneStyle, "Up to date"))
	} else {
		b.WriteString(r.style(haltedStyle, fmt.Sprintf("%d step(s) would install", summary.Absent)))
	}
	return b.String()
}
