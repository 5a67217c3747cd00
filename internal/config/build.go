package config

import (
	"errors"
	"fmt"

	"github.com/alexisbeaulieu97/rigup/internal/engine"
	"github.com/alexisbeaulieu97/rigup/internal/model"
	"github.com/alexisbeaulieu97/rigup/internal/platform"
	"github.com/alexisbeaulieu97/rigup/internal/plugin"
	rigerrors "github.com/alexisbeaulieu97/rigup/pkg/errors"
)

// BuildSteps resolves each configured step against the registry and returns
// the engine steps in declaration order. Unknown managers and settings a
// plugin rejects are reported as validation errors naming the step field.
func BuildSteps(cfg *Config, registry *plugin.Registry, info platform.Info) ([]engine.Step, error) {
	if cfg == nil {
		return nil, rigerrors.NewValidationError("config", "configuration is nil", nil)
	}
	if registry == nil {
		return nil, fmt.Errorf("plugin registry is nil")
	}

	steps := make([]engine.Step, 0, len(cfg.Steps))
	for i, sc := range cfg.Steps {
		step, err := buildStep(i, sc, registry, info)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func buildStep(index int, sc Step, registry *plugin.Registry, info platform.Info) (engine.Step, error) {
	resource, err := model.NewResource(sc.ResourceName(), sc.ResourceKind(), sc.Version)
	if err != nil {
		return engine.Step{}, rigerrors.NewValidationError(fieldForStep(index, "kind"), err.Error(), err)
	}

	p, err := registry.ForKind(sc.PluginName(), sc.ResourceKind())
	if err != nil {
		field := "kind"
		if sc.ResourceKind() == model.KindPackage {
			field = "manager"
		}
		var notFound plugin.ErrPluginNotFound
		if errors.As(err, &notFound) && field == "manager" {
			return engine.Step{}, rigerrors.NewValidationError(fieldForStep(index, field),
				fmt.Sprintf("unknown manager %q", sc.Manager), err)
		}
		return engine.Step{}, rigerrors.NewValidationError(fieldForStep(index, field), err.Error(), err)
	}

	handler, err := p.Bind(settingsFor(sc))
	if err != nil {
		return engine.Step{}, rigerrors.NewValidationError(fmt.Sprintf("steps[%d]", index), err.Error(), err)
	}

	step := engine.Step{
		ID:         sc.ID,
		Label:      sc.Name,
		Resource:   resource,
		Probe:      handler,
		Installer:  handler,
		BestEffort: sc.BestEffort,
		EnvDelta:   sc.Env.Deltas(),
	}
	if previewer, ok := handler.(plugin.Previewer); ok {
		step.Preview = previewer
	}
	if sc.When != "" {
		cond, err := platform.Compile(sc.When, info)
		if err != nil {
			return engine.Step{}, rigerrors.NewValidationError(fieldForStep(index, "when"), err.Error(), err)
		}
		step.When = cond
	}
	return step, nil
}

func settingsFor(sc Step) plugin.Settings {
	settings := plugin.Settings{
		StepID:   sc.ID,
		Editor:   sc.Editor,
		File:     sc.File,
		Marker:   sc.Marker,
		Block:    sc.Block,
		Backup:   sc.Backup,
		Encoding: sc.Encoding,
	}
	if sc.Install != nil {
		settings.Command = sc.Install.Command
		settings.Shell = sc.Install.Shell
	}
	return settings
}
