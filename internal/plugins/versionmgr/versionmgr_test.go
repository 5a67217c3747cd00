package versionmgrplugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
	"github.com/alexisbeaulieu97/rigup/internal/model"
	"github.com/alexisbeaulieu97/rigup/internal/plugin"
	"github.com/alexisbeaulieu97/rigup/internal/plugins/cmdexec/cmdexectest"
	rigerrors "github.com/alexisbeaulieu97/rigup/pkg/errors"
)

func bind(t *testing.T, p plugin.Plugin) plugin.Handler {
	t.Helper()
	h, err := p.Bind(plugin.Settings{StepID: "node"})
	require.NoError(t, err)
	return h
}

func TestMatch(t *testing.T) {
	t.Parallel()

	installed := []string{"v22.1.0", "v20.11.1", "v18.20.4"}

	tests := []struct {
		constraint string
		want       string
	}{
		{constraint: model.VersionLTS, want: "v22.1.0"},
		{constraint: model.VersionLatest, want: "v22.1.0"},
		{constraint: "", want: "v22.1.0"},
		{constraint: "20", want: "v20.11.1"},
		{constraint: "v18.20", want: "v18.20.4"},
		{constraint: "18.20.4", want: "v18.20.4"},
		{constraint: "18.20.3", want: ""},
		{constraint: "16", want: ""},
		{constraint: "not-a-version", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, match(installed, tt.constraint))
		})
	}

	assert.Empty(t, match(nil, model.VersionLTS))
}

func TestParsers(t *testing.T) {
	t.Parallel()

	fnm := parseFnmList("* v18.20.4\n* v20.11.1 default, lts-latest\n* system\n")
	assert.Equal(t, []string{"v18.20.4", "v20.11.1"}, fnm)

	uv := parseUvPythonList("cpython-3.12.7-linux-x86_64-gnu    /home/u/.local/share/uv/python/cpython-3.12.7\npypy-3.10.14-linux    /x\ncpython-3.11.10-macos-aarch64-none /y\n")
	assert.Equal(t, []string{"3.12.7", "3.11.10"}, uv)
}

func TestFnmProbe(t *testing.T) {
	t.Parallel()

	runner := cmdexectest.New().OnExit("fnm list", 0, "* v20.11.1 default\n* system")
	h := bind(t, NewFnm(runner))

	presence, err := h.Probe(context.Background(), environ.Env{}, model.MustResource("node", model.KindPackage, model.VersionLTS))
	require.NoError(t, err)
	require.Equal(t, model.Present, presence)

	presence, err = h.Probe(context.Background(), environ.Env{}, model.MustResource("node", model.KindPackage, "22"))
	require.NoError(t, err)
	require.Equal(t, model.Absent, presence)
}

func TestFnmProbeWithoutFnmIsIndeterminate(t *testing.T) {
	t.Parallel()

	presence, err := bind(t, NewFnm(cmdexectest.New())).Probe(context.Background(), environ.Env{}, model.MustResource("node", model.KindPackage, model.VersionLTS))
	require.Equal(t, model.Absent, presence)
	var stateErr *plugin.StateError
	require.ErrorAs(t, err, &stateErr)
}

func TestFnmInstallLTSSetsDefault(t *testing.T) {
	t.Parallel()

	runner := cmdexectest.New().
		OnExit("fnm install --lts", 0, "Installing Node v22.11.0").
		OnExit("fnm list", 0, "* v18.20.4\n* v22.11.0 lts-latest\n* system").
		OnExit("fnm default v22.11.0", 0, "")

	result := bind(t, NewFnm(runner)).Install(context.Background(), environ.Env{}, model.MustResource("node", model.KindPackage, model.VersionLTS))
	require.Equal(t, model.OutcomeInstalled, result.Outcome, result.Message)
	require.Equal(t, []string{"fnm install --lts", "fnm list", "fnm default v22.11.0"}, runner.Lines())
}

func TestFnmInstallFailure(t *testing.T) {
	t.Parallel()

	runner := cmdexectest.New().OnExit("fnm install 99", 1, "error: Can't find version that matches 99")

	result := bind(t, NewFnm(runner)).Install(context.Background(), environ.Env{}, model.MustResource("node", model.KindPackage, "99"))
	var installErr *rigerrors.InstallFailedError
	require.ErrorAs(t, result.Reason, &installErr)
	require.Equal(t, 1, installErr.Code)
	require.Equal(t, []string{"fnm install 99"}, runner.Lines())
}

func TestUvInstallHasNoActivation(t *testing.T) {
	t.Parallel()

	runner := cmdexectest.New().OnExit("uv python install 3.12", 0, "Installed Python 3.12.7")

	result := bind(t, NewUv(runner)).Install(context.Background(), environ.Env{}, model.MustResource("python", model.KindPackage, "3.12"))
	require.Equal(t, model.OutcomeInstalled, result.Outcome)
	require.Equal(t, []string{"uv python install 3.12"}, runner.Lines())
}

func TestUvProbe(t *testing.T) {
	t.Parallel()

	runner := cmdexectest.New().OnExit("uv python list --only-installed", 0, "cpython-3.12.7-linux-x86_64-gnu    /p")

	presence, err := bind(t, NewUv(runner)).Probe(context.Background(), environ.Env{}, model.MustResource("python", model.KindPackage, "3.12"))
	require.NoError(t, err)
	require.Equal(t, model.Present, presence)
}
