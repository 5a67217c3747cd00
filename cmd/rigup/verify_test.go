package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyReportsAbsentSteps(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.runner.OnExit("brew list --versions git", 0, "git 2.47.0")
	path := env.writeConfig(t, applyConfig)

	out, err := env.execute("verify", "-c", path, "--skip", "eslint")
	require.Error(t, err)
	require.Equal(t, 1, exitCodeFor(err))
	require.Empty(t, errorMessage(err))

	require.Contains(t, out, "git  present")
	require.Contains(t, out, "tool  absent")
	require.Contains(t, out, "would run: install-tool")
	require.Contains(t, out, "eslint  skipped")
	require.Contains(t, out, "profile  absent")
	require.Contains(t, out, "+# rigup:test")
	require.Contains(t, out, "1 present, 2 absent, 1 skipped")

	for _, call := range env.runner.Calls() {
		require.False(t, strings.HasPrefix(call.Line, "sh "), "verify never installs")
	}
	_, statErr := os.Stat(filepath.Join(env.home, ".zshrc"))
	require.True(t, os.IsNotExist(statErr))
}

func TestVerifyUpToDate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.runner.OnExit("brew list --versions git", 0, "git 2.47.0")
	path := env.writeConfig(t, "version: \"1.0\"\nname: x\nsteps:\n  - { id: git, kind: package, manager: brew, package: git }\n")

	out, err := env.execute("verify", "-c", path)
	require.NoError(t, err)
	require.Contains(t, out, "Up to date")
}
