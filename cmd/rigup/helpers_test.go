package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/rigup/internal/platform"
	"github.com/alexisbeaulieu97/rigup/internal/plugins/cmdexec/cmdexectest"
)

type testEnv struct {
	app    *app
	runner *cmdexectest.Runner
	home   string
	bin    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	home := t.TempDir()
	bin := t.TempDir()
	runner := cmdexectest.New()
	return &testEnv{
		runner: runner,
		home:   home,
		bin:    bin,
		app: &app{
			runner:   runner,
			platform: func() platform.Info { return platform.Info{OS: "darwin", Arch: "arm64"} },
			environ:  func() []string { return []string{"HOME=" + home, "PATH=" + bin} },
			terminal: func(io.Writer) bool { return false },
			euid:     func() int { return 501 },
		},
	}
}

func (e *testEnv) writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rigup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (e *testEnv) execute(args ...string) (string, error) {
	root := newRootCmd(e.app)
	stdout := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}
