package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexisbeaulieu97/rigup/internal/engine"
	"github.com/alexisbeaulieu97/rigup/internal/model"
)

// Observer forwards runner progress to a Bubbletea program.
type Observer struct {
	send func(tea.Msg)
}

var _ engine.Observer = (*Observer)(nil)

// NewObserver returns an Observer that sends messages to p.
func NewObserver(p *tea.Program) *Observer {
	return &Observer{send: p.Send}
}

// StepStarted implements engine.Observer.
func (o *Observer) StepStarted(index int, step *engine.Step) {
	o.send(StepStartMsg{Index: index, ID: step.ID, Time: time.Now()})
}

// StepFinished implements engine.Observer.
func (o *Observer) StepFinished(entry model.ReportEntry) {
	o.send(StepFinishedMsg{Entry: entry})
}

// Execute runs fn while p displays progress and returns fn's report. The
// program is told to quit once fn returns; Execute waits for both.
func Execute(p *tea.Program, fn func() *model.RunReport) (*model.RunReport, error) {
	done := make(chan *model.RunReport, 1)
	go func() {
		rep := fn()
		done <- rep
		p.Send(RunFinishedMsg{Report: rep})
	}()

	_, err := p.Run()
	return <-done, err
}
