package extensionplugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
	"github.com/alexisbeaulieu97/rigup/internal/model"
	"github.com/alexisbeaulieu97/rigup/internal/plugin"
	"github.com/alexisbeaulieu97/rigup/internal/plugins/cmdexec/cmdexectest"
	rigerrors "github.com/alexisbeaulieu97/rigup/pkg/errors"
)

func eslint(version string) model.Resource {
	return model.MustResource("dbaeumer.vscode-eslint", model.KindExtension, version)
}

func TestBindValidatesEditor(t *testing.T) {
	t.Parallel()

	p := New(cmdexectest.New())
	_, err := p.Bind(plugin.Settings{StepID: "ext", Editor: "notepad"})
	var validationErr *plugin.ValidationError
	require.ErrorAs(t, err, &validationErr)

	h, err := p.Bind(plugin.Settings{StepID: "ext"})
	require.NoError(t, err)
	require.Equal(t, DefaultEditor, h.(*handler).editor)
}

func TestProbeIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	runner := cmdexectest.New().OnExit("cursor --list-extensions", 0, "DBAEUMER.vscode-ESLint\nms-python.python\n")
	h, err := New(runner).Bind(plugin.Settings{StepID: "ext", Editor: "cursor"})
	require.NoError(t, err)

	presence, err := h.Probe(context.Background(), environ.Env{}, eslint(""))
	require.NoError(t, err)
	require.Equal(t, model.Present, presence)

	presence, err = h.Probe(context.Background(), environ.Env{}, model.MustResource("golang.go", model.KindExtension, ""))
	require.NoError(t, err)
	require.Equal(t, model.Absent, presence)
}

func TestProbeWithoutEditorFailsOpen(t *testing.T) {
	t.Parallel()

	h, err := New(cmdexectest.New()).Bind(plugin.Settings{StepID: "ext"})
	require.NoError(t, err)

	presence, err := h.Probe(context.Background(), environ.Env{}, eslint(""))
	require.Equal(t, model.Absent, presence)
	require.Error(t, err)
}

func TestInstall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		version string
		line    string
		code    int
		stdout  string
		want    model.Outcome
	}{
		{name: "fresh", line: "code --install-extension dbaeumer.vscode-eslint", stdout: "Extension 'dbaeumer.vscode-eslint' was successfully installed.", want: model.OutcomeInstalled},
		{name: "already", line: "code --install-extension dbaeumer.vscode-eslint", stdout: "Extension 'dbaeumer.vscode-eslint' is already installed.", want: model.OutcomeAlreadyPresent},
		{name: "latest forces update", version: model.VersionLatest, line: "code --install-extension dbaeumer.vscode-eslint --force", want: model.OutcomeInstalled},
		{name: "pinned", version: "3.0.10", line: "code --install-extension dbaeumer.vscode-eslint@3.0.10", want: model.OutcomeInstalled},
		{name: "marketplace failure", line: "code --install-extension dbaeumer.vscode-eslint", code: 1, stdout: "Failed Installing Extensions", want: model.OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			runner := cmdexectest.New().OnExit(tt.line, tt.code, tt.stdout)
			h, err := New(runner).Bind(plugin.Settings{StepID: "ext"})
			require.NoError(t, err)

			result := h.Install(context.Background(), environ.Env{}, eslint(tt.version))
			require.Equal(t, tt.want, result.Outcome)
			if tt.want == model.OutcomeFailed {
				var installErr *rigerrors.InstallFailedError
				require.ErrorAs(t, result.Reason, &installErr)
				require.Equal(t, "Failed Installing Extensions", installErr.Diagnostic)
			}
		})
	}
}
