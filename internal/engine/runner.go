package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
	"github.com/alexisbeaulieu97/rigup/internal/logger"
	"github.com/alexisbeaulieu97/rigup/internal/model"
	rigerrors "github.com/alexisbeaulieu97/rigup/pkg/errors"
)

// Observer receives progress notifications from a run. Calls happen on the
// runner's goroutine, in step order.
type Observer interface {
	StepStarted(index int, step *Step)
	StepFinished(entry model.ReportEntry)
}

type nopObserver struct{}

func (nopObserver) StepStarted(int, *Step)         {}
func (nopObserver) StepFinished(model.ReportEntry) {}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for per-step diagnostics.
func WithLogger(log *logger.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithObserver registers a progress observer.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithSkip excludes the given step IDs from execution. Skipped steps are
// still reported.
func WithSkip(ids ...string) Option {
	return func(r *Runner) {
		for _, id := range ids {
			r.skip[id] = struct{}{}
		}
	}
}

// WithName labels the report.
func WithName(name string) Option {
	return func(r *Runner) { r.name = name }
}

// WithRunID sets the correlation identifier recorded in the report.
func WithRunID(id string) Option {
	return func(r *Runner) { r.runID = id }
}

// WithStepTimeout bounds each step's probe and install. Zero means no bound.
func WithStepTimeout(d time.Duration) Option {
	return func(r *Runner) { r.stepTimeout = d }
}

// Runner executes steps strictly in declaration order, one at a time.
// A failed step that is not best-effort halts the run.
type Runner struct {
	steps       []Step
	skip        map[string]struct{}
	log         *logger.Logger
	observer    Observer
	name        string
	runID       string
	stepTimeout time.Duration

	state model.RunState
	index int
}

// NewRunner validates the steps and builds a Runner.
func NewRunner(steps []Step, opts ...Option) (*Runner, error) {
	seen := make(map[string]struct{}, len(steps))
	for i := range steps {
		if err := steps[i].Validate(); err != nil {
			return nil, rigerrors.NewValidationError(fmt.Sprintf("steps[%d]", i), err.Error(), err)
		}
		if _, dup := seen[steps[i].ID]; dup {
			return nil, rigerrors.NewValidationError(fmt.Sprintf("steps[%d].id", i), fmt.Sprintf("duplicate step id %q", steps[i].ID), nil)
		}
		seen[steps[i].ID] = struct{}{}
	}

	r := &Runner{
		steps:    append([]Step(nil), steps...),
		skip:     make(map[string]struct{}),
		log:      logger.Nop(),
		observer: nopObserver{},
		state:    model.RunPending,
	}
	for _, opt := range opts {
		opt(r)
	}
	for id := range r.skip {
		if _, ok := seen[id]; !ok {
			return nil, rigerrors.NewValidationError("skip", fmt.Sprintf("unknown step id %q", id), nil)
		}
	}
	return r, nil
}

// Steps returns the configured steps in execution order.
func (r *Runner) Steps() []Step {
	return append([]Step(nil), r.steps...)
}

// State returns the lifecycle state of the most recent run.
func (r *Runner) State() model.RunState {
	return r.state
}

// Index returns the 0-based index of the step currently or last executed.
func (r *Runner) Index() int {
	return r.index
}

// Run executes every step in order against env and returns the report.
// The environment is threaded through the run: each step sees the deltas
// declared by the steps before it that left their resource present.
func (r *Runner) Run(ctx context.Context, env environ.Env) *model.RunReport {
	report := model.NewRunReport(r.name, r.runID)
	report.Started = time.Now()
	r.index = 0

	lc, err := newLifecycle()
	if err != nil {
		r.state = model.RunHalted
		report.MarkHalted(0, err)
		return report
	}
	defer lc.stop()

	lc.send(eventStart)
	r.state = lc.state()
	r.log.WithFields(map[string]any{"steps": len(r.steps), "skipped": len(r.skip)}).Info("run started")

	var bestEffortFailures []string

	for i := range r.steps {
		step := &r.steps[i]
		position := i + 1
		r.index = i

		if ctxErr := ctx.Err(); ctxErr != nil {
			return r.halt(lc, report, position, rigerrors.NewExecutionError(step.ID, position, ctxErr))
		}

		r.observer.StepStarted(position, step)
		entry := r.runStep(ctx, env, position, step)

		if entry.Result.IsFailure() && len(bestEffortFailures) > 0 {
			reason := rigerrors.NewDependencyMissingError(step.ID, bestEffortFailures, entry.Result.Reason)
			entry.Result = model.Failed(reason)
		}

		report.Append(entry)
		r.observer.StepFinished(entry)
		r.logEntry(entry)

		if entry.Result.Satisfied() && len(step.EnvDelta) > 0 {
			env = env.With(step.EnvDelta...)
			r.log.WithFields(map[string]any{"step_id": step.ID, "deltas": len(step.EnvDelta)}).Debug("environment updated")
		}

		if entry.Result.IsFailure() {
			if step.BestEffort {
				bestEffortFailures = append(bestEffortFailures, step.ID)
				continue
			}
			return r.halt(lc, report, position, rigerrors.NewExecutionError(step.ID, position, entry.Result.Reason))
		}
	}

	lc.send(eventComplete)
	r.state = lc.state()
	report.MarkCompleted()
	r.log.WithFields(map[string]any{"duration_ms": report.Duration().Milliseconds()}).Info("run completed")
	return report
}

func (r *Runner) runStep(ctx context.Context, env environ.Env, position int, step *Step) model.ReportEntry {
	start := time.Now()
	entry := model.ReportEntry{
		Index:      position,
		StepID:     step.ID,
		Label:      step.DisplayName(),
		Kind:       step.Resource.Kind(),
		BestEffort: step.BestEffort,
	}

	entry.Result = r.resolve(ctx, env, step)
	entry.Duration = time.Since(start)
	entry.Timestamp = time.Now()
	return entry
}

func (r *Runner) resolve(ctx context.Context, env environ.Env, step *Step) model.InstallResult {
	if _, skip := r.skip[step.ID]; skip {
		return model.Skipped("skipped by request")
	}

	if step.When != nil {
		holds, err := step.When.Holds(env)
		if err != nil {
			return model.Failed(fmt.Errorf("evaluate condition %q: %w", step.When.String(), err))
		}
		if !holds {
			return model.Skipped(fmt.Sprintf("condition not met: %s", step.When.String()))
		}
	}

	stepCtx := ctx
	if r.stepTimeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, r.stepTimeout)
		defer cancel()
	}

	result, indeterminate := step.evaluate(stepCtx, env)
	if indeterminate != nil {
		r.log.WithFields(map[string]any{"step_id": step.ID}).Debug(indeterminate.Error())
	}
	return result
}

func (r *Runner) halt(lc *lifecycle, report *model.RunReport, position int, cause error) *model.RunReport {
	lc.send(eventHalt)
	r.state = lc.state()
	report.MarkHalted(position, cause)
	r.log.Error(cause, "run halted")
	return report
}

func (r *Runner) logEntry(entry model.ReportEntry) {
	log := r.log.WithFields(map[string]any{
		"step_id":     entry.StepID,
		"kind":        string(entry.Kind),
		"outcome":     string(entry.Result.Outcome),
		"duration_ms": entry.Duration.Milliseconds(),
	})
	switch {
	case entry.Result.IsFailure() && entry.BestEffort:
		log.Warn(entry.Result.Message)
	case entry.Result.IsFailure():
		log.Error(entry.Result.Reason, "step failed")
	default:
		log.Info(entry.Result.Message)
	}
}

// Verify probes every step without installing anything. Environment deltas
// of steps whose resource is already present are applied so later probes see
// the same environment an apply would give them.
func (r *Runner) Verify(ctx context.Context, env environ.Env) (*model.VerificationSummary, error) {
	start := time.Now()
	summary := &model.VerificationSummary{}

	for i := range r.steps {
		step := &r.steps[i]
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			return summary, rigerrors.NewExecutionError(step.ID, i+1, err)
		}

		result := model.VerificationResult{StepID: step.ID, Label: step.DisplayName(), Kind: step.Resource.Kind()}
		stepStart := time.Now()

		skipped, err := r.skipped(env, step)
		if err != nil {
			summary.Duration = time.Since(start)
			return summary, rigerrors.NewExecutionError(step.ID, i+1, err)
		}
		if skipped {
			result.Skipped = true
			summary.Add(result)
			continue
		}

		presence, indeterminate := step.CheckPresence(ctx, env)
		if indeterminate != nil {
			r.log.WithFields(map[string]any{"step_id": step.ID}).Debug(indeterminate.Error())
		}
		result.Presence = presence
		if presence == model.Present {
			env = env.With(step.EnvDelta...)
		} else if step.Preview != nil {
			if details, err := step.Preview.Preview(ctx, env, step.Resource); err == nil {
				result.Details = details
			}
		}
		result.Duration = time.Since(stepStart)
		summary.Add(result)
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

func (r *Runner) skipped(env environ.Env, step *Step) (bool, error) {
	if _, skip := r.skip[step.ID]; skip {
		return true, nil
	}
	if step.When == nil {
		return false, nil
	}
	holds, err := step.When.Holds(env)
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", step.When.String(), err)
	}
	return !holds, nil
}
