// Package cmdexec runs external tools on behalf of the adapters, always with
// the run's environment rather than the process's.
package cmdexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
)

// Result captures how a command finished. A non-zero ExitCode is not an
// error; callers classify it.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// PrimaryOutput returns stderr if present, otherwise stdout.
func (r Result) PrimaryOutput() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// Success reports a zero exit code.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Runner executes a command in env. The returned error is non-nil only when
// the command could not be started or was interrupted.
type Runner interface {
	Run(ctx context.Context, env environ.Env, name string, args ...string) (Result, error)
}

// Exec runs commands with os/exec.
type Exec struct {
	// Stdout and Stderr, when set, receive a live copy of the output.
	Stdout io.Writer
	Stderr io.Writer
}

// Run resolves name against the PATH of env and runs it.
func (e Exec) Run(ctx context.Context, env environ.Env, name string, args ...string) (Result, error) {
	path, err := env.LookPath(name)
	if err != nil {
		return Result{ExitCode: -1}, fmt.Errorf("%s: %w", name, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Env = env.Environ()

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = tee(e.Stdout, &stdoutBuf)
	cmd.Stderr = tee(e.Stderr, &stderrBuf)

	runErr := cmd.Run()
	res := Result{
		Stdout: strings.TrimSpace(stdoutBuf.String()),
		Stderr: strings.TrimSpace(stderrBuf.String()),
	}
	if runErr == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	res.ExitCode = -1
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("%s: %w", name, ctxErr)
	}
	return res, fmt.Errorf("%s: %w", name, runErr)
}

func tee(w io.Writer, buf *bytes.Buffer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(w, buf)
}

// ShellArgs returns the interpreter and arguments that run script with shell.
// An empty shell selects sh on Unix and PowerShell on Windows.
func ShellArgs(shell, script string) (string, []string) {
	if shell == "" {
		if runtime.GOOS == "windows" {
			shell = "powershell"
		} else {
			shell = "sh"
		}
	}
	switch strings.ToLower(strings.TrimSuffix(shell, ".exe")) {
	case "powershell", "pwsh":
		return shell, []string{"-NoProfile", "-NonInteractive", "-Command", script}
	case "cmd":
		return shell, []string{"/C", script}
	default:
		return shell, []string{"-c", script}
	}
}

// CommandLine renders name and args for diagnostics.
func CommandLine(name string, args ...string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// ExitCodes is a set of exit codes an adapter gives special meaning to.
// Codes are matched as reported natively, as signed 32-bit values (Windows
// HRESULTs), and by their low byte when the tool runs through WSL interop,
// which truncates exit statuses to eight bits.
type ExitCodes []uint32

// Match reports whether code is in the set.
func (c ExitCodes) Match(code int, truncated bool) bool {
	for _, want := range c {
		switch {
		case code == int(want), code == int(int32(want)):
			return true
		case truncated && code == int(want&0xff):
			return true
		}
	}
	return false
}
