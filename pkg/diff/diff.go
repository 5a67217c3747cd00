// Package diff renders line-oriented previews of file changes.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	// ContextLines is the number of unchanged lines kept around each change.
	ContextLines = 3

	maxDiffLines    = 10000
	truncateMessage = "... (diff truncated, exceeds 10,000 lines) ..."
)

type line struct {
	op   byte
	text string
}

// Unified returns a unified-style diff from before to after, or "" when they
// are equal. Runs of unchanged lines longer than twice ContextLines are
// collapsed.
func Unified(before, after, fromLabel, toLabel string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var lines []line
	for _, d := range diffs {
		op := byte(' ')
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = '-'
		case diffmatchpatch.DiffInsert:
			op = '+'
		}
		for _, text := range splitKeepingContent(d.Text) {
			lines = append(lines, line{op: op, text: text})
		}
	}

	var buf strings.Builder
	fmt.Fprintf(&buf, "--- %s\n+++ %s\n", fromLabel, toLabel)
	written := 2
	for _, l := range collapse(lines) {
		if written >= maxDiffLines {
			buf.WriteString(truncateMessage + "\n")
			break
		}
		if l.op == 0 {
			buf.WriteString("@@ ... @@\n")
		} else {
			buf.WriteByte(l.op)
			buf.WriteString(l.text)
			buf.WriteByte('\n')
		}
		written++
	}
	return buf.String()
}

func splitKeepingContent(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}

// collapse keeps ContextLines unchanged lines on each side of a change and
// replaces the rest with a single marker (op 0).
func collapse(lines []line) []line {
	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.op == ' ' {
			continue
		}
		for j := max(0, i-ContextLines); j <= min(len(lines)-1, i+ContextLines); j++ {
			keep[j] = true
		}
	}

	var out []line
	skipping := false
	for i, l := range lines {
		if keep[i] {
			out = append(out, l)
			skipping = false
			continue
		}
		if !skipping {
			out = append(out, line{})
			skipping = true
		}
	}
	return out
}
