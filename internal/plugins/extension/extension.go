package extensionplugin

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
	"github.com/alexisbeaulieu97/rigup/internal/model"
	"github.com/alexisbeaulieu97/rigup/internal/plugin"
	"github.com/alexisbeaulieu97/rigup/internal/plugins/cmdexec"
	rigerrors "github.com/alexisbeaulieu97/rigup/pkg/errors"
)

// DefaultEditor is used when a step does not name one.
const DefaultEditor = "code"

// knownEditors are VS Code compatible CLIs.
var knownEditors = map[string]struct{}{
	"code":          {},
	"code-insiders": {},
	"codium":        {},
	"cursor":        {},
	"windsurf":      {},
}

type extensionPlugin struct {
	runner cmdexec.Runner
}

// New creates the editor extension plugin.
func New(runner cmdexec.Runner) plugin.Plugin {
	if runner == nil {
		runner = cmdexec.Exec{}
	}
	return &extensionPlugin{runner: runner}
}

var _ plugin.Plugin = (*extensionPlugin)(nil)

func (p *extensionPlugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "extension",
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Kind:        model.KindExtension,
		Description: "Installs editor extensions through a VS Code compatible CLI.",
	}
}

func (p *extensionPlugin) Bind(settings plugin.Settings) (plugin.Handler, error) {
	editor := strings.TrimSpace(settings.Editor)
	if editor == "" {
		editor = DefaultEditor
	}
	if _, ok := knownEditors[editor]; !ok {
		return nil, plugin.NewValidationError(settings.StepID, fmt.Errorf("unsupported editor %q", editor))
	}
	return &handler{runner: p.runner, editor: editor, stepID: settings.StepID}, nil
}

type handler struct {
	runner cmdexec.Runner
	editor string
	stepID string
}

// Probe compares extension identifiers case-insensitively, matching how the
// marketplace treats them.
func (h *handler) Probe(ctx context.Context, env environ.Env, res model.Resource) (model.PresenceResult, error) {
	installed, err := h.list(ctx, env)
	if err != nil {
		return model.Absent, plugin.NewStateError(h.stepID, err)
	}
	if _, ok := installed[strings.ToLower(res.Name())]; ok {
		return model.Present, nil
	}
	return model.Absent, nil
}

func (h *handler) list(ctx context.Context, env environ.Env) (map[string]struct{}, error) {
	out, err := h.runner.Run(ctx, env, h.editor, "--list-extensions")
	if err != nil {
		return nil, err
	}
	if !out.Success() {
		return nil, fmt.Errorf("%s --list-extensions exited %d: %s", h.editor, out.ExitCode, out.PrimaryOutput())
	}
	set := make(map[string]struct{})
	for _, line := range strings.Split(out.Stdout, "\n") {
		if id := strings.ToLower(strings.TrimSpace(line)); id != "" {
			set[id] = struct{}{}
		}
	}
	return set, nil
}

func (h *handler) Install(ctx context.Context, env environ.Env, res model.Resource) model.InstallResult {
	target := res.Name()
	args := []string{"--install-extension"}
	switch v := res.VersionConstraint(); v {
	case "", model.VersionLTS:
		args = append(args, target)
	case model.VersionLatest:
		args = append(args, target, "--force")
	default:
		args = append(args, target+"@"+v)
	}
	line := cmdexec.CommandLine(h.editor, args...)

	out, err := h.runner.Run(ctx, env, h.editor, args...)
	if err != nil {
		return model.Failed(plugin.NewExecutionError(h.stepID, rigerrors.WrapInstallFailed(target, line, err)))
	}
	if !out.Success() {
		return model.Failed(plugin.NewExecutionError(h.stepID,
			rigerrors.NewInstallFailedError(target, line, out.ExitCode, out.PrimaryOutput())))
	}
	if strings.Contains(strings.ToLower(out.Stdout), "already installed") {
		return model.AlreadyPresent(fmt.Sprintf("%s already installed in %s", target, h.editor))
	}
	return model.Installed(fmt.Sprintf("installed %s in %s", target, h.editor))
}
