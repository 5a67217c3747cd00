package cmdexec

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
)

func processEnv(t *testing.T) environ.Env {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell assumptions do not hold on Windows")
	}
	return environ.FromProcess()
}

func TestExecRunSuccess(t *testing.T) {
	t.Parallel()
	env := processEnv(t)

	var live bytes.Buffer
	res, err := Exec{Stdout: &live}.Run(context.Background(), env, "echo", "hello world")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "hello world", res.Stdout)
	assert.Equal(t, "hello world\n", live.String())
	assert.True(t, res.Success())
}

func TestExecRunNonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()
	env := processEnv(t)

	res, err := Exec{}.Run(context.Background(), env, "sh", "-c", "echo 'already installed' >&2; exit 43")
	require.NoError(t, err)
	assert.Equal(t, 43, res.ExitCode)
	assert.Equal(t, "already installed", res.PrimaryOutput())
}

func TestExecRunMissingBinary(t *testing.T) {
	t.Parallel()
	env := processEnv(t)

	res, err := Exec{}.Run(context.Background(), env, "definitely-not-a-real-tool-rigup")
	require.ErrorIs(t, err, environ.ErrNotFound)
	assert.Equal(t, -1, res.ExitCode)
}

func TestExecRunUsesRunEnvironment(t *testing.T) {
	t.Parallel()
	env := processEnv(t)

	dir := t.TempDir()
	script := filepath.Join(dir, "rigup-probe")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$FNM_DIR\"\n"), 0o755))

	_, err := Exec{}.Run(context.Background(), env, "rigup-probe")
	require.Error(t, err)

	next := env.With(environ.PrependPath(dir), environ.Set("FNM_DIR", "/opt/fnm"))
	res, err := Exec{}.Run(context.Background(), next, "rigup-probe")
	require.NoError(t, err)
	assert.Equal(t, "/opt/fnm", res.Stdout)
}

func TestExecRunCancelled(t *testing.T) {
	t.Parallel()
	env := processEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Exec{}.Run(ctx, env, "sleep", "5")
	require.ErrorIs(t, err, context.Canceled)
}

func TestShellArgs(t *testing.T) {
	t.Parallel()

	name, args := ShellArgs("bash", "curl -fsSL https://fnm.vercel.app/install | bash")
	assert.Equal(t, "bash", name)
	assert.Equal(t, []string{"-c", "curl -fsSL https://fnm.vercel.app/install | bash"}, args)

	name, args = ShellArgs("pwsh", "irm https://astral.sh/uv/install.ps1 | iex")
	assert.Equal(t, "pwsh", name)
	assert.Equal(t, "-Command", args[2])

	name, _ = ShellArgs("", "true")
	if runtime.GOOS == "windows" {
		assert.Equal(t, "powershell", name)
	} else {
		assert.Equal(t, "sh", name)
	}
}

func TestExitCodesMatch(t *testing.T) {
	t.Parallel()

	codes := ExitCodes{0x8A150061, 0x8A15002B}

	tests := []struct {
		name      string
		code      int
		truncated bool
		want      bool
	}{
		{name: "unsigned", code: 0x8A150061, want: true},
		{name: "signed", code: int(int32(-1978335135)), want: true},
		{name: "low byte under wsl", code: 0x2B, truncated: true, want: true},
		{name: "low byte natively", code: 0x2B, want: false},
		{name: "other", code: 1, truncated: true, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, codes.Match(tt.code, tt.truncated))
		})
	}
}

func TestCommandLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "brew", CommandLine("brew"))
	assert.Equal(t, "brew list --versions git", CommandLine("brew", "list", "--versions", "git"))
}
