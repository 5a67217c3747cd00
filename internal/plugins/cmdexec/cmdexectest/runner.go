// Package cmdexectest provides a scripted cmdexec.Runner for adapter tests.
package cmdexectest

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
	"github.com/alexisbeaulieu97/rigup/internal/plugins/cmdexec"
)

// Call records one invocation.
type Call struct {
	Line string
	Env  environ.Env
}

type response struct {
	result cmdexec.Result
	err    error
}

// Runner replays scripted responses keyed by full command line. Responses for
// the same line are consumed in order; the last one repeats. Unscripted
// commands fail as if the tool were not installed.
type Runner struct {
	mu        sync.Mutex
	responses map[string][]response
	calls     []Call
}

// New returns an empty Runner.
func New() *Runner {
	return &Runner{responses: make(map[string][]response)}
}

// On scripts the result of a command line such as "brew list --versions git".
func (r *Runner) On(line string, result cmdexec.Result) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[line] = append(r.responses[line], response{result: result})
	return r
}

// OnExit scripts an exit code with output on stdout.
func (r *Runner) OnExit(line string, code int, stdout string) *Runner {
	return r.On(line, cmdexec.Result{ExitCode: code, Stdout: stdout})
}

// OnError scripts a start failure.
func (r *Runner) OnError(line string, err error) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses[line] = append(r.responses[line], response{result: cmdexec.Result{ExitCode: -1}, err: err})
	return r
}

// Run implements cmdexec.Runner.
func (r *Runner) Run(ctx context.Context, env environ.Env, name string, args ...string) (cmdexec.Result, error) {
	line := cmdexec.CommandLine(name, args...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Line: line, Env: env})

	if err := ctx.Err(); err != nil {
		return cmdexec.Result{ExitCode: -1}, err
	}
	queue := r.responses[line]
	if len(queue) == 0 {
		return cmdexec.Result{ExitCode: -1}, fmt.Errorf("%s: executable file not found in PATH", name)
	}
	next := queue[0]
	if len(queue) > 1 {
		r.responses[line] = queue[1:]
	}
	return next.result, next.err
}

// Lines returns the command lines run so far, in order.
func (r *Runner) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Line
	}
	return out
}

// Calls returns every recorded invocation.
func (r *Runner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}
