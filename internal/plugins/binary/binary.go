package binaryplugin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
	"github.com/alexisbeaulieu97/rigup/internal/model"
	"github.com/alexisbeaulieu97/rigup/internal/plugin"
	"github.com/alexisbeaulieu97/rigup/internal/plugins/cmdexec"
	rigerrors "github.com/alexisbeaulieu97/rigup/pkg/errors"
)

type binaryPlugin struct {
	runner cmdexec.Runner
}

// New creates the binary plugin. A binary is present when its name resolves
// on the run's PATH; it is installed by running a shell command, typically an
// upstream install script.
func New(runner cmdexec.Runner) plugin.Plugin {
	if runner == nil {
		runner = cmdexec.Exec{}
	}
	return &binaryPlugin{runner: runner}
}

var _ plugin.Plugin = (*binaryPlugin)(nil)

func (p *binaryPlugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "binary",
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Kind:        model.KindBinary,
		Description: "Ensures an executable is on PATH, running an install command otherwise.",
	}
}

func (p *binaryPlugin) Bind(settings plugin.Settings) (plugin.Handler, error) {
	if strings.TrimSpace(settings.Command) == "" {
		return nil, plugin.NewValidationError(settings.StepID, errors.New("install command is required"))
	}
	return &handler{runner: p.runner, settings: settings}, nil
}

type handler struct {
	runner   cmdexec.Runner
	settings plugin.Settings
}

func (h *handler) Probe(_ context.Context, env environ.Env, res model.Resource) (model.PresenceResult, error) {
	if _, err := env.LookPath(res.Name()); err != nil {
		if errors.Is(err, environ.ErrNotFound) {
			return model.Absent, nil
		}
		return model.Absent, plugin.NewStateError(h.settings.StepID, err)
	}
	return model.Present, nil
}

func (h *handler) Install(ctx context.Context, env environ.Env, res model.Resource) model.InstallResult {
	shell, args := cmdexec.ShellArgs(h.settings.Shell, h.settings.Command)
	line := cmdexec.CommandLine(shell, args...)

	out, err := h.runner.Run(ctx, env, shell, args...)
	if err != nil {
		return model.Failed(plugin.NewExecutionError(h.settings.StepID, rigerrors.WrapInstallFailed(res.Name(), line, err)))
	}
	if !out.Success() {
		return model.Failed(plugin.NewExecutionError(h.settings.StepID,
			rigerrors.NewInstallFailedError(res.Name(), line, out.ExitCode, out.PrimaryOutput())))
	}
	return model.Installed(fmt.Sprintf("ran install command for %s", res.Name()))
}

// Preview shows the install command.
func (h *handler) Preview(context.Context, environ.Env, model.Resource) (string, error) {
	return "would run: " + h.settings.Command, nil
}
