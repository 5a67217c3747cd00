package pkgmgrplugin

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

// commands is the per-manager command table. The generic manager below
// knows nothing about any particular tool beyond what is declared here.
type commands struct {
	name        string
	description string
	binary      string

	// installBinary runs installs and upgrades; defaults to binary.
	installBinary string
	platforms     []string
	// windowsTool is invoked as name.exe from WSL.
	windowsTool bool

	// query lists the package; installed interprets the result.
	query     func(pkg string) []string
	installed func(out cmdexec.Result, res model.Resource) (bool, error)

	// outdated, when set, reports whether an installed package has a newer
	// version available. Without it a `latest` constraint always defers to
	// the installer.
	outdated func(pkg string) []string

	install func(res model.Resource) []string
	upgrade func(pkg string) []string

	// alreadyInstalled and noUpgrade are exit codes that mean the desired
	// state already holds.
	alreadyInstalled cmdexec.ExitCodes
	noUpgrade        cmdexec.ExitCodes

	// notFound are query exit codes that mean "not installed" rather than
	// "could not tell".
	notFound cmdexec.ExitCodes

	sudo bool
}

// Options configures a package manager plugin.
type Options struct {
	Runner cmdexec.Runner
	// WSL routes Windows tools through interop (winget.exe) and matches
	// truncated exit codes.
	WSL bool
	// Sudo prefixes installs with `sudo -n` (apt only).
	Sudo bool
}

type manager struct {
	cmds   commands
	runner cmdexec.Runner
	wsl    bool
}

var _ plugin.Plugin = (*manager)(nil)

func newManager(cmds commands, opts Options) *manager {
	if opts.Runner == nil {
		opts.Runner = cmdexec.Exec{}
	}
	if opts.WSL && cmds.windowsTool {
		cmds.binary += ".exe"
	}
	cmds.sudo = cmds.sudo && opts.Sudo
	return &manager{cmds: cmds, runner: opts.Runner, wsl: opts.WSL}
}

func (m *manager) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        m.cmds.name,
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Kind:        model.KindPackage,
		Description: m.cmds.description,
		Platforms:   m.cmds.platforms,
	}
}

func (m *manager) Bind(settings plugin.Settings) (plugin.Handler, error) {
	return &handler{manager: m, stepID: settings.StepID}, nil
}

type handler struct {
	*manager
	stepID string
}

func (h *handler) Probe(ctx context.Context, env environ.Env, res model.Resource) (model.PresenceResult, error) {
	installed, err := h.isInstalled(ctx, env, res)
	if err != nil {
		return model.Absent, plugin.NewStateError(h.stepID, err)
	}
	if !installed {
		return model.Absent, nil
	}
	if res.VersionConstraint() != model.VersionLatest {
		return model.Present, nil
	}
	if h.cmds.outdated == nil {
		// Whether an upgrade exists is only known by attempting it.
		return model.Absent, nil
	}

	args := h.cmds.outdated(res.Name())
	out, err := h.runner.Run(ctx, env, h.cmds.binary, args...)
	if err != nil {
		return model.Absent, plugin.NewStateError(h.stepID, err)
	}
	if out.Success() && strings.TrimSpace(out.Stdout) == "" {
		return model.Present, nil
	}
	return model.Absent, nil
}

func (h *handler) isInstalled(ctx context.Context, env environ.Env, res model.Resource) (bool, error) {
	args := h.cmds.query(res.Name())
	out, err := h.runner.Run(ctx, env, h.cmds.binary, args...)
	if err != nil {
		return false, fmt.Errorf("query %s: %w", res.Name(), err)
	}
	if h.cmds.notFound.Match(out.ExitCode, h.wsl) {
		return false, nil
	}
	return h.cmds.installed(out, res)
}

func (h *handler) Install(ctx context.Context, env environ.Env, res model.Resource) model.InstallResult {
	if res.VersionConstraint() == model.VersionLatest && h.cmds.upgrade != nil {
		installed, err := h.isInstalled(ctx, env, res)
		if err == nil && installed {
			return h.run(ctx, env, res, h.cmds.upgrade(res.Name()), h.cmds.noUpgrade, "upgraded")
		}
	}
	return h.run(ctx, env, res, h.cmds.install(res), h.cmds.alreadyInstalled, "installed")
}

func (h *handler) run(ctx context.Context, env environ.Env, res model.Resource, args []string, satisfied cmdexec.ExitCodes, verb string) model.InstallResult {
	name, args := h.installCommand(args)
	line := cmdexec.CommandLine(name, args...)

	out, err := h.runner.Run(ctx, env, name, args...)
	if err != nil {
		return model.Failed(plugin.NewExecutionError(h.stepID, rigerrors.WrapInstallFailed(res.Name(), line, err)))
	}
	switch {
	case out.Success():
		return model.Installed(fmt.Sprintf("%s %s via %s", verb, res.Name(), h.cmds.name))
	case satisfied.Match(out.ExitCode, h.wsl):
		return model.AlreadyPresent(fmt.Sprintf("%s reports %s up to date (exit %d)", h.cmds.name, res.Name(), out.ExitCode))
	default:
		return model.Failed(plugin.NewExecutionError(h.stepID,
			rigerrors.NewInstallFailedError(res.Name(), line, out.ExitCode, out.PrimaryOutput())))
	}
}

// Preview describes the command an install would run.
func (h *handler) Preview(_ context.Context, _ environ.Env, res model.Resource) (string, error) {
	name, args := h.installCommand(h.cmds.install(res))
	return "would run: " + cmdexec.CommandLine(name, args...), nil
}

func (h *handler) installCommand(args []string) (string, []string) {
	name := h.cmds.installBinary
	if name == "" {
		name = h.cmds.binary
	}
	if h.cmds.sudo {
		return "sudo", append([]string{"-n", name}, args...)
	}
	return name, args
}
