package engine

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"github.com/alexisbeaulieu97/rigup/internal/model"
)

// Runner lifecycle: pending -> running -> halted | completed.
const (
	statePending   = "pending"
	stateRunning   = "running"
	stateHalted    = "halted"
	stateCompleted = "completed"

	eventStart    = "START"
	eventHalt     = "HALT"
	eventComplete = "COMPLETE"
)

type lifecycleContext struct{}

type lifecycle struct {
	interp *statekit.Interpreter[lifecycleContext]
}

func newLifecycle() (*lifecycle, error) {
	machine, err := statekit.NewMachine[lifecycleContext]("rigup-runner").
		WithInitial(statePending).
		WithContext(lifecycleContext{}).
		State(statePending).
		On(eventStart).Target(stateRunning).Done().
		State(stateRunning).
		On(eventHalt).Target(stateHalted).
		On(eventComplete).Target(stateCompleted).Done().
		State(stateHalted).Done().
		State(stateCompleted).Done().
		Build()
	if err != nil {
		return nil, fmt.Errorf("build runner state machine: %w", err)
	}

	interp := statekit.NewInterpreter(machine)
	interp.Start()
	return &lifecycle{interp: interp}, nil
}

func (l *lifecycle) send(event string) {
	l.interp.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (l *lifecycle) state() model.RunState {
	return model.RunState(l.interp.State().Value)
}

func (l *lifecycle) stop() {
	l.interp.Stop()
}
