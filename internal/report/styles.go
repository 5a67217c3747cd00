package report

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	presentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	haltedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
)

// glyph pairs a styled symbol with its plain-text fallback.
type glyph struct {
	styled string
	plain  string
	style  lipgloss.Style
}

var (
	glyphInstalled = glyph{styled: "✓", plain: "+", style: successStyle}
	glyphPresent   = glyph{styled: "✓", plain: "=", style: presentStyle}
	glyphSkipped   = glyph{styled: "⊘", plain: "-", style: skippedStyle}
	glyphFailed    = glyph{styled: "✗", plain: "x", style: failureStyle}
	glyphAbsent    = glyph{styled: "✱", plain: "*", style: failureStyle}
)
