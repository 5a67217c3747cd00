// Package versionmgrplugin installs language runtimes through version
// managers such as fnm (Node.js) and uv (Python).
package versionmgrplugin

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
	"github.com/alexisbeaulieu97/rigup/internal/model"
	"github.com/alexisbeaulieu97/rigup/internal/plugin"
	"github.com/alexisbeaulieu97/rigup/internal/plugins/cmdexec"
	rigerrors "github.com/alexisbeaulieu97/rigup/pkg/errors"
)

// table declares how to drive one version manager.
type table struct {
	name        string
	description string
	binary      string

	list  []string
	parse func(stdout string) []string

	// install returns the args that install a runtime matching constraint.
	install func(constraint string) []string
	// activate returns the args that make version the default; nil when the
	// manager has no such notion.
	activate func(version string) []string
}

type manager struct {
	table  table
	runner cmdexec.Runner
}

var _ plugin.Plugin = (*manager)(nil)

func newManager(t table, runner cmdexec.Runner) *manager {
	if runner == nil {
		runner = cmdexec.Exec{}
	}
	return &manager{table: t, runner: runner}
}

func (m *manager) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        m.table.name,
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Kind:        model.KindPackage,
		Description: m.table.description,
	}
}

func (m *manager) Bind(settings plugin.Settings) (plugin.Handler, error) {
	return &handler{manager: m, stepID: settings.StepID}, nil
}

type handler struct {
	*manager
	stepID string
}

// Installed lists the installed versions in canonical semver form, newest first.
func (h *handler) installed(ctx context.Context, env environ.Env) ([]string, error) {
	out, err := h.runner.Run(ctx, env, h.table.binary, h.table.list...)
	if err != nil {
		return nil, err
	}
	if !out.Success() {
		return nil, fmt.Errorf("%s exited %d: %s", cmdexec.CommandLine(h.table.binary, h.table.list...), out.ExitCode, out.PrimaryOutput())
	}

	var versions []string
	for _, raw := range h.table.parse(out.Stdout) {
		if v := canonical(raw); v != "" {
			versions = append(versions, v)
		}
	}
	sort.Slice(versions, func(i, j int) bool { return semver.Compare(versions[i], versions[j]) > 0 })
	return versions, nil
}

func (h *handler) Probe(ctx context.Context, env environ.Env, res model.Resource) (model.PresenceResult, error) {
	versions, err := h.installed(ctx, env)
	if err != nil {
		return model.Absent, plugin.NewStateError(h.stepID, err)
	}
	if match(versions, res.VersionConstraint()) != "" {
		return model.Present, nil
	}
	return model.Absent, nil
}

func (h *handler) Install(ctx context.Context, env environ.Env, res model.Resource) model.InstallResult {
	args := h.table.install(res.VersionConstraint())
	line := cmdexec.CommandLine(h.table.binary, args...)

	out, err := h.runner.Run(ctx, env, h.table.binary, args...)
	if err != nil {
		return model.Failed(plugin.NewExecutionError(h.stepID, rigerrors.WrapInstallFailed(res.String(), line, err)))
	}
	if !out.Success() {
		return model.Failed(plugin.NewExecutionError(h.stepID,
			rigerrors.NewInstallFailedError(res.String(), line, out.ExitCode, out.PrimaryOutput())))
	}
	if h.table.activate == nil {
		return model.Installed(fmt.Sprintf("installed %s with %s", res, h.table.name))
	}

	versions, err := h.installed(ctx, env)
	if err != nil {
		return model.Failed(plugin.NewExecutionError(h.stepID, fmt.Errorf("list after install: %w", err)))
	}
	version := match(versions, res.VersionConstraint())
	if version == "" {
		return model.Failed(plugin.NewExecutionError(h.stepID,
			fmt.Errorf("%s reported success but no installed version satisfies %q", h.table.name, res.VersionConstraint())))
	}

	activate := h.table.activate(version)
	activateLine := cmdexec.CommandLine(h.table.binary, activate...)
	out, err = h.runner.Run(ctx, env, h.table.binary, activate...)
	if err != nil {
		return model.Failed(plugin.NewExecutionError(h.stepID, rigerrors.WrapInstallFailed(res.String(), activateLine, err)))
	}
	if !out.Success() {
		return model.Failed(plugin.NewExecutionError(h.stepID,
			rigerrors.NewInstallFailedError(res.String(), activateLine, out.ExitCode, out.PrimaryOutput())))
	}
	return model.Installed(fmt.Sprintf("installed %s %s with %s and made it the default", res.Name(), version, h.table.name))
}

// canonical turns "v20.11.1", "20.11.1" or "3.12" into semver form, or ""
// when raw is not a version.
func canonical(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

// match returns the newest installed version satisfying constraint. "lts",
// "latest" and "" accept any installed version; a concrete constraint
// matches exactly or by major/minor prefix.
func match(installed []string, constraint string) string {
	switch constraint {
	case "", model.VersionLatest, model.VersionLTS:
		if len(installed) > 0 {
			return installed[0]
		}
		return ""
	}

	want := strings.TrimPrefix(strings.TrimSpace(constraint), "v")
	parts := strings.Count(want, ".") + 1
	target := canonical(want)
	if target == "" {
		return ""
	}
	for _, v := range installed {
		switch parts {
		case 1:
			if semver.Major(v) == semver.Major(target) {
				return v
			}
		case 2:
			if semver.MajorMinor(v) == semver.MajorMinor(target) {
				return v
			}
		default:
			if semver.Compare(v, target) == 0 {
				return v
			}
		}
	}
	return ""
}
