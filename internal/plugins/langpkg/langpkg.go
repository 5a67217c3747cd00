// Package langpkgplugin installs command-line tools published to language
// package registries: npm globals and uv tools.
package langpkgplugin

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

type installer struct {
	name        string
	description string
	binary      string

	// list returns the args listing installed packages; parse maps the
	// output to package name -> version.
	list  func(pkg string) []string
	parse func(stdout string) map[string]string
	// missingExit is the list exit code meaning "not installed".
	missingExit int

	// outdated, when set, exits non-zero if a newer version exists.
	outdated func(pkg string) []string

	install func(pkg, constraint string) []string
}

type packagePlugin struct {
	spec   installer
	runner cmdexec.Runner
}

var _ plugin.Plugin = (*packagePlugin)(nil)

func (p *packagePlugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        p.spec.name,
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Kind:        model.KindPackage,
		Description: p.spec.description,
	}
}

func (p *packagePlugin) Bind(settings plugin.Settings) (plugin.Handler, error) {
	return &handler{packagePlugin: p, stepID: settings.StepID}, nil
}

type handler struct {
	*packagePlugin
	stepID string
}

func (h *handler) Probe(ctx context.Context, env environ.Env, res model.Resource) (model.PresenceResult, error) {
	args := h.spec.list(res.Name())
	out, err := h.runner.Run(ctx, env, h.spec.binary, args...)
	if err != nil {
		return model.Absent, plugin.NewStateError(h.stepID, err)
	}
	if !out.Success() {
		if out.ExitCode == h.spec.missingExit {
			return model.Absent, nil
		}
		return model.Absent, plugin.NewStateError(h.stepID,
			fmt.Errorf("%s exited %d: %s", cmdexec.CommandLine(h.spec.binary, args...), out.ExitCode, out.PrimaryOutput()))
	}

	version, ok := h.spec.parse(out.Stdout)[strings.ToLower(res.Name())]
	if !ok {
		return model.Absent, nil
	}

	switch constraint := res.VersionConstraint(); constraint {
	case "", model.VersionLTS:
		return model.Present, nil
	case model.VersionLatest:
		if h.spec.outdated == nil {
			return model.Present, nil
		}
		check, err := h.runner.Run(ctx, env, h.spec.binary, h.spec.outdated(res.Name())...)
		if err != nil || !check.Success() {
			return model.Absent, err
		}
		return model.Present, nil
	default:
		if strings.TrimPrefix(version, "v") == strings.TrimPrefix(constraint, "v") {
			return model.Present, nil
		}
		return model.Absent, nil
	}
}

func (h *handler) Install(ctx context.Context, env environ.Env, res model.Resource) model.InstallResult {
	args := h.spec.install(res.Name(), res.VersionConstraint())
	line := cmdexec.CommandLine(h.spec.binary, args...)

	out, err := h.runner.Run(ctx, env, h.spec.binary, args...)
	if err != nil {
		return model.Failed(plugin.NewExecutionError(h.stepID, rigerrors.WrapInstallFailed(res.Name(), line, err)))
	}
	if !out.Success() {
		return model.Failed(plugin.NewExecutionError(h.stepID,
			rigerrors.NewInstallFailedError(res.Name(), line, out.ExitCode, out.PrimaryOutput())))
	}
	return model.Installed(fmt.Sprintf("installed %s with %s", res.Name(), h.spec.name))
}

// NewNpm returns the plugin for global npm packages.
func NewNpm(runner cmdexec.Runner) plugin.Plugin {
	return newPlugin(installer{
		name:        "npm",
		description: "Installs global npm packages.",
		binary:      "npm",
		list: func(pkg string) []string {
			return []string{"ls", "--global", "--depth=0", pkg}
		},
		parse:       parseNpmList,
		missingExit: 1,
		outdated: func(pkg string) []string {
			return []string{"outdated", "--global", pkg}
		},
		install: func(pkg, constraint string) []string {
			switch constraint {
			case "", model.VersionLTS:
			case model.VersionLatest:
				pkg += "@latest"
			default:
				pkg += "@" + constraint
			}
			return []string{"install", "--global", pkg}
		},
	}, runner)
}

// NewUvTool returns the plugin for `uv tool` installs.
func NewUvTool(runner cmdexec.Runner) plugin.Plugin {
	return newPlugin(installer{
		name:        "uvtool",
		description: "Installs Python command-line tools with uv tool.",
		binary:      "uv",
		list: func(string) []string {
			return []string{"tool", "list"}
		},
		parse:       parseUvToolList,
		missingExit: -1,
		install: func(pkg, constraint string) []string {
			switch constraint {
			case "", model.VersionLTS:
				return []string{"tool", "install", pkg}
			case model.VersionLatest:
				return []string{"tool", "install", "--upgrade", pkg}
			default:
				return []string{"tool", "install", pkg + "==" + constraint}
			}
		},
	}, runner)
}

func newPlugin(spec installer, runner cmdexec.Runner) *packagePlugin {
	if runner == nil {
		runner = cmdexec.Exec{}
	}
	return &packagePlugin{spec: spec, runner: runner}
}

// parseNpmList reads `npm ls` tree output ("└── eslint@9.14.0",
// "├── @biomejs/biome@1.9.4").
func parseNpmList(stdout string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		entry := fields[len(fields)-1]
		at := strings.LastIndex(entry, "@")
		if at <= 0 {
			continue
		}
		out[strings.ToLower(entry[:at])] = entry[at+1:]
	}
	return out
}

// parseUvToolList reads "ruff v0.7.1" headers and ignores the "- ruff"
// executable lines beneath them.
func parseUvToolList(stdout string) map[string]string {
	out := make(map[string]string)
	for _, line := range strings.Split(stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[0] == "-" {
			continue
		}
		out[strings.ToLower(fields[0])] = strings.TrimPrefix(fields[1], "v")
	}
	return out
}
