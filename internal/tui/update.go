package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles Bubbletea messages and updates model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StepStartMsg:
		if msg.ID != "" {
			m.steps = m.steps.Start(msg.ID)
		}
		return m, nil
	case StepFinishedMsg:
		if msg.Entry.StepID == "" {
			return m, nil
		}
		var first bool
		m.steps, first = m.steps.Finish(msg.Entry)
		if first {
			m.record(msg.Entry)
		}
		return m, nil
	case RunFinishedMsg:
		m.report = msg.Report
		m.finished = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			if m.cancelled {
				return m, tea.Quit
			}
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
	case tea.QuitMsg:
		m.finished = true
		return m, nil
	}

	return m, nil
}
