package engine

import (
	"context"
	"fmt"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
	"github.com/alexisbeaulieu97/rigup/internal/model"
	rigerrors "github.com/alexisbeaulieu97/rigup/pkg/errors"
)

// Prober reports whether a resource is present. Implementations must not
// mutate state. An error means presence could not be determined.
type Prober interface {
	Probe(ctx context.Context, env environ.Env, res model.Resource) (model.PresenceResult, error)
}

// Installer brings a resource to the present state. Implementations must be
// safe to call when the resource is already present.
type Installer interface {
	Install(ctx context.Context, env environ.Env, res model.Resource) model.InstallResult
}

// Previewer optionally describes what an install would change.
type Previewer interface {
	Preview(ctx context.Context, env environ.Env, res model.Resource) (string, error)
}

// Condition gates a step on properties of the target machine.
type Condition interface {
	Holds(env environ.Env) (bool, error)
	String() string
}

// ProbeFunc adapts a function to Prober.
type ProbeFunc func(ctx context.Context, env environ.Env, res model.Resource) (model.PresenceResult, error)

// Probe calls f.
func (f ProbeFunc) Probe(ctx context.Context, env environ.Env, res model.Resource) (model.PresenceResult, error) {
	return f(ctx, env, res)
}

// InstallFunc adapts a function to Installer.
type InstallFunc func(ctx context.Context, env environ.Env, res model.Resource) model.InstallResult

// Install calls f.
func (f InstallFunc) Install(ctx context.Context, env environ.Env, res model.Resource) model.InstallResult {
	return f(ctx, env, res)
}

// Step pairs a presence probe with an installer for one resource. Steps are
// built once from configuration and never mutated.
type Step struct {
	ID         string
	Label      string
	Resource   model.Resource
	Probe      Prober
	Installer  Installer
	BestEffort bool

	// EnvDelta is applied to the run environment once the step leaves its
	// resource present (installed or already there).
	EnvDelta []environ.Delta
	// When, if set, must hold for the step to run; otherwise it is skipped.
	When Condition
	// Preview is used by verification to show pending changes.
	Preview Previewer
}

// DisplayName returns the label, falling back to the ID.
func (s *Step) DisplayName() string {
	if s.Label != "" {
		return s.Label
	}
	return s.ID
}

// Validate checks that the step can be evaluated.
func (s *Step) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("step id is required")
	}
	if s.Resource.Name() == "" {
		return fmt.Errorf("step %s: resource is required", s.ID)
	}
	if s.Probe == nil {
		return fmt.Errorf("step %s: probe is required", s.ID)
	}
	if s.Installer == nil {
		return fmt.Errorf("step %s: installer is required", s.ID)
	}
	return nil
}

// Evaluate runs the check-then-act sequence: probe, and only when the
// resource is absent, install.
func (s *Step) Evaluate(ctx context.Context, env environ.Env) model.InstallResult {
	result, _ := s.evaluate(ctx, env)
	return result
}

func (s *Step) evaluate(ctx context.Context, env environ.Env) (model.InstallResult, error) {
	presence, indeterminate := s.CheckPresence(ctx, env)
	if presence == model.Present {
		return model.AlreadyPresent(fmt.Sprintf("%s already present", s.Resource.Name())), nil
	}
	return s.install(ctx, env), indeterminate
}

// CheckPresence probes the resource. Any probe error or panic is reported as
// Absent together with a ProbeIndeterminateError describing why.
func (s *Step) CheckPresence(ctx context.Context, env environ.Env) (presence model.PresenceResult, indeterminate error) {
	defer func() {
		if r := recover(); r != nil {
			presence = model.Absent
			indeterminate = rigerrors.NewProbeIndeterminateError(s.Resource.String(), fmt.Errorf("probe panicked: %v", r))
		}
	}()

	result, err := s.Probe.Probe(ctx, env, s.Resource)
	if err != nil {
		return model.Absent, rigerrors.NewProbeIndeterminateError(s.Resource.String(), err)
	}
	if result != model.Present {
		return model.Absent, nil
	}
	return model.Present, nil
}

func (s *Step) install(ctx context.Context, env environ.Env) (result model.InstallResult) {
	defer func() {
		if r := recover(); r != nil {
			result = model.Failed(fmt.Errorf("installer panicked: %v", r))
		}
	}()

	result = s.Installer.Install(ctx, env, s.Resource)
	switch result.Outcome {
	case model.OutcomeInstalled, model.OutcomeAlreadyPresent, model.OutcomeFailed:
	default:
		return model.Failed(fmt.Errorf("installer returned unexpected outcome %q", result.Outcome))
	}
	if result.IsFailure() && result.Reason == nil {
		result.Reason = fmt.Errorf("install %s failed", s.Resource.Name())
		if result.Message == "" {
			result.Message = result.Reason.Error()
		}
	}
	return result
}
