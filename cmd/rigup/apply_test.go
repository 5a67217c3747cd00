package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/rigup/internal/plugins/cmdexec"
)

const applyConfig = `version: "1.0"
name: laptop
steps:
  - id: git
    kind: package
    manager: brew
    package: git
  - id: tool
    kind: binary
    binary: rigup-tool
    install: { command: install-tool, shell: sh }
  - id: eslint
    kind: extension
    editor: code
    extension: dbaeumer.vscode-eslint
    best_effort: true
  - id: profile
    kind: config_block
    file: ~/.zshrc
    marker: "# rigup:test"
    block: export RIGUP=1
`

func TestApplyCompletesWithBestEffortFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.runner.
		OnExit("brew list --versions git", 0, "git 2.47.0").
		OnExit("sh -c install-tool", 0, "")
	path := env.writeConfig(t, applyConfig)

	out, err := env.execute("apply", "-c", path, "--no-tui")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Equal(t, "rigup • laptop", lines[0])
	require.Contains(t, lines[1], "git      already present")
	require.Contains(t, lines[2], "tool     installed")
	require.Contains(t, lines[3], "eslint   failed (best effort)")
	require.Contains(t, out, "profile  installed")
	require.True(t, strings.HasSuffix(strings.TrimSpace(out), "Completed"))

	data, err := os.ReadFile(filepath.Join(env.home, ".zshrc"))
	require.NoError(t, err)
	require.Contains(t, string(data), "export RIGUP=1")
	require.Contains(t, string(data), "# rigup:test")
}

func TestApplyHaltsOnFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.runner.
		OnExit("brew list --versions git", 1, "").
		On("brew install git", cmdexec.Result{ExitCode: 1, Stderr: "Error: network unreachable"})
	path := env.writeConfig(t, applyConfig)

	out, err := env.execute("apply", "-c", path, "--no-tui")
	require.Error(t, err)
	require.Equal(t, exitHalted, exitCodeFor(err))
	require.Empty(t, errorMessage(err))

	require.Contains(t, out, "Halted at step 1: ")
	require.Contains(t, out, "network unreachable")
	require.NotContains(t, out, "tool")

	for _, call := range env.runner.Calls() {
		require.NotContains(t, call.Line, "install-tool", "steps after the halt never run")
	}
	_, statErr := os.Stat(filepath.Join(env.home, ".zshrc"))
	require.True(t, os.IsNotExist(statErr))
}

func TestApplySkipsSteps(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.runner.OnExit("sh -c install-tool", 0, "")
	path := env.writeConfig(t, applyConfig)

	out, err := env.execute("apply", "-c", path, "--no-tui", "--skip", "git,eslint")
	require.NoError(t, err)
	require.Contains(t, out, "git      skipped")
	require.Contains(t, out, "eslint   skipped")
	require.Contains(t, out, "2 installed, 0 already present, 2 skipped, 0 failed")
}

func TestApplyRejectsUnknownSkip(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	path := env.writeConfig(t, applyConfig)

	_, err := env.execute("apply", "-c", path, "--no-tui", "--skip", "nope")
	require.Error(t, err)
	require.Equal(t, exitConfig, exitCodeFor(err))
	require.Contains(t, err.Error(), `unknown step id "nope"`)
}

func TestApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.runner.OnExit("brew list --versions git", 0, "git 2.47.0")
	tool := filepath.Join(env.bin, "rigup-tool")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755))
	path := env.writeConfig(t, strings.Replace(applyConfig, "    best_effort: true\n", "    best_effort: true\n    when: has(\"code\")\n", 1))

	first, err := env.execute("apply", "-c", path, "--no-tui")
	require.NoError(t, err)
	require.Contains(t, first, "profile  installed")

	second, err := env.execute("apply", "-c", path, "--no-tui")
	require.NoError(t, err)
	require.Contains(t, second, "0 installed, 3 already present, 1 skipped, 0 failed")

	data, err := os.ReadFile(filepath.Join(env.home, ".zshrc"))
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), "# rigup:test"))
}

func TestApplyLoadsEnvFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	envFile := filepath.Join(t.TempDir(), "rigup.env")
	require.NoError(t, os.WriteFile(envFile, []byte("RIGUP_PROFILE=work\n"), 0o600))
	env.runner.OnExit("sh -c install-tool", 0, "")

	path := env.writeConfig(t, fmt.Sprintf(`version: "1.0"
name: env
settings:
  env_file: %s
steps:
  - id: work-only
    kind: binary
    binary: rigup-tool
    install: { command: install-tool, shell: sh }
    when: env["RIGUP_PROFILE"] == "work"
  - id: home-only
    kind: binary
    binary: rigup-other
    install: { command: install-other, shell: sh }
    when: env["RIGUP_PROFILE"] == "home"
`, envFile))

	out, err := env.execute("apply", "-c", path, "--no-tui")
	require.NoError(t, err)
	require.Contains(t, out, "work-only  installed")
	require.Contains(t, out, "home-only  skipped")

	calls := env.runner.Calls()
	require.Len(t, calls, 1)
	require.Equal(t, "work", calls[0].Env.Get("RIGUP_PROFILE"))
}

func TestApplyMissingEnvFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	path := env.writeConfig(t, `version: "1.0"
name: env
settings:
  env_file: /definitely/missing/rigup.env
steps:
  - { id: git, kind: package, manager: brew, package: git }
`)

	_, err := env.execute("apply", "-c", path, "--no-tui")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Failed to load environment")
}

func TestApplyConfigErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		config string
		want   string
	}{
		{name: "malformed yaml", config: "version: [\n", want: "parse error"},
		{name: "unknown manager", config: "version: \"1.0\"\nname: x\nsteps:\n  - { id: black, kind: package, manager: pip, package: black }\n", want: `unknown manager "pip"`},
		{name: "duplicate ids", config: "version: \"1.0\"\nname: x\nsteps:\n  - { id: git, kind: package, manager: brew, package: git }\n  - { id: git, kind: package, manager: brew, package: git }\n", want: "duplicate step id"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			_, err := env.execute("apply", "-c", env.writeConfig(t, tc.config), "--no-tui")
			require.Error(t, err)
			require.Equal(t, exitConfig, exitCodeFor(err))
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestApplyRequiresConfig(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, err := env.execute("apply")
	require.Error(t, err)

	_, err = env.execute("apply", "-c", t.TempDir())
	require.ErrorContains(t, err, "is a directory")

	_, err = env.execute("apply", "-c", "/definitely/missing.yaml")
	require.ErrorContains(t, err, "does not exist")
}

func TestApplyRejectsUnknownLogFormat(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	path := env.writeConfig(t, applyConfig)
	_, err := env.execute("apply", "-c", path, "--no-tui", "--log-format", "xml")
	require.ErrorContains(t, err, "unknown log format")
}

func TestApplyWritesJSONLogFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.runner.OnExit("brew list --versions git", 0, "git 2.47.0")
	path := env.writeConfig(t, "version: \"1.0\"\nname: x\nsteps:\n  - { id: git, kind: package, manager: brew, package: git }\n")
	logFile := filepath.Join(t.TempDir(), "rigup.log")

	_, err := env.execute("apply", "-c", path, "--no-tui", "--log-file", logFile, "--log-format", "json")
	require.NoError(t, err)

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	require.Contains(t, string(data), `"run_id":`)
	require.Contains(t, string(data), `"step_id":"git"`)
}
