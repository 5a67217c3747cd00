package versionmgrplugin

import (
	"strings"

	"github.com/alexisbeaulieu97/rigup/internal/model"
	"github.com/alexisbeaulieu97/rigup/internal/plugin"
	"github.com/alexisbeaulieu97/rigup/internal/plugins/cmdexec"
)

// NewFnm returns the fnm (Fast Node Manager) plugin.
func NewFnm(runner cmdexec.Runner) plugin.Plugin {
	return newManager(table{
		name:        "fnm",
		description: "Installs Node.js runtimes with fnm.",
		binary:      "fnm",
		list:        []string{"list"},
		parse:       parseFnmList,
		install: func(constraint string) []string {
			switch constraint {
			case "", model.VersionLTS:
				return []string{"install", "--lts"}
			case model.VersionLatest:
				return []string{"install", "--latest"}
			default:
				return []string{"install", constraint}
			}
		},
		activate: func(version string) []string {
			return []string{"default", version}
		},
	}, runner)
}

// parseFnmList reads lines such as "* v20.11.1 default" and "* system".
func parseFnmList(stdout string) []string {
	var out []string
	for _, line := range strings.Split(stdout, "\n") {
		fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		if len(fields) == 0 || fields[0] == "system" {
			continue
		}
		out = append(out, fields[0])
	}
	return out
}

// NewUv returns the uv plugin for managed Python interpreters.
func NewUv(runner cmdexec.Runner) plugin.Plugin {
	return newManager(table{
		name:        "uv",
		description: "Installs Python interpreters with uv.",
		binary:      "uv",
		list:        []string{"python", "list", "--only-installed"},
		parse:       parseUvPythonList,
		install: func(constraint string) []string {
			switch constraint {
			case "", model.VersionLTS, model.VersionLatest:
				return []string{"python", "install"}
			default:
				return []string{"python", "install", constraint}
			}
		},
	}, runner)
}

// parseUvPythonList reads lines such as
// "cpython-3.12.7-linux-x86_64-gnu    /home/u/.local/share/uv/python/...".
func parseUvPythonList(stdout string) []string {
	var out []string
	for _, line := range strings.Split(stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		parts := strings.Split(fields[0], "-")
		if len(parts) < 2 || parts[0] != "cpython" {
			continue
		}
		out = append(out, parts[1])
	}
	return out
}
