package configblockplugin

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
	"github.com/alexisbeaulieu97/rigup/internal/model"
	"github.com/alexisbeaulieu97/rigup/internal/plugin"
)

const (
	marker = "# rigup:fnm"
	block  = `eval "$(fnm env --use-on-cd)"`
)

func bindBlock(t *testing.T, settings plugin.Settings) plugin.Handler {
	t.Helper()
	settings.StepID = "fnm-profile"
	if settings.Marker == "" {
		settings.Marker = marker
	}
	if settings.Block == "" {
		settings.Block = block
	}
	p := New().(*configBlockPlugin)
	p.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	h, err := p.Bind(settings)
	require.NoError(t, err)
	return h
}

func resource() model.Resource {
	return model.MustResource(marker, model.KindConfigBlock, "")
}

func TestBindValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings plugin.Settings
	}{
		{name: "missing file", settings: plugin.Settings{Marker: marker}},
		{name: "missing marker", settings: plugin.Settings{File: "~/.bashrc"}},
		{name: "multiline marker", settings: plugin.Settings{File: "~/.bashrc", Marker: "a\nb"}},
		{name: "bad encoding", settings: plugin.Settings{File: "~/.bashrc", Marker: marker, Encoding: "utf-32"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New().Bind(tt.settings)
			var validationErr *plugin.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestMarkerBlockIsAppendedOnce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, ".bashrc")
	require.NoError(t, os.WriteFile(target, []byte("export EDITOR=vim"), 0o600))
	h := bindBlock(t, plugin.Settings{File: target})
	ctx := context.Background()

	presence, err := h.Probe(ctx, environ.Env{}, resource())
	require.NoError(t, err)
	require.Equal(t, model.Absent, presence)

	require.Equal(t, model.OutcomeInstalled, h.Install(ctx, environ.Env{}, resource()).Outcome)

	presence, err = h.Probe(ctx, environ.Env{}, resource())
	require.NoError(t, err)
	require.Equal(t, model.Present, presence)

	// A second install re-checks the marker and leaves the file alone.
	require.Equal(t, model.OutcomeAlreadyPresent, h.Install(ctx, environ.Env{}, resource()).Outcome)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, "export EDITOR=vim\n"+block+"\n"+marker+"\n", string(data))
	require.Equal(t, 1, strings.Count(string(data), marker))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(target)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestMarkerAnywhereCountsAsPresent(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "profile")
	require.NoError(t, os.WriteFile(target, []byte("# edited by hand\n"+marker+" (moved)\n"), 0o644))

	presence, err := bindBlock(t, plugin.Settings{File: target}).Probe(context.Background(), environ.Env{}, resource())
	require.NoError(t, err)
	require.Equal(t, model.Present, presence)
}

func TestInstallCreatesMissingFileUnderHome(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	env := environ.New([]string{"HOME=" + home, "USERPROFILE=" + home})
	h := bindBlock(t, plugin.Settings{File: "~/.config/fish/conf.d/rigup.fish"})

	presence, err := h.Probe(context.Background(), env, resource())
	require.NoError(t, err)
	require.Equal(t, model.Absent, presence)

	require.Equal(t, model.OutcomeInstalled, h.Install(context.Background(), env, resource()).Outcome)

	data, err := os.ReadFile(filepath.Join(home, ".config", "fish", "conf.d", "rigup.fish"))
	require.NoError(t, err)
	require.Equal(t, block+"\n"+marker+"\n", string(data))
}

func TestInstallWithBackup(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), ".zshrc")
	require.NoError(t, os.WriteFile(target, []byte("original\n"), 0o644))

	result := bindBlock(t, plugin.Settings{File: target, Backup: true}).Install(context.Background(), environ.Env{}, resource())
	require.Equal(t, model.OutcomeInstalled, result.Outcome)

	backup := target + ".20250102T030405.bak"
	require.Contains(t, result.Message, backup)
	data, err := os.ReadFile(backup)
	require.NoError(t, err)
	require.Equal(t, "original\n", string(data))
}

func TestUTF16ProfileRoundTrip(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), "Microsoft.PowerShell_profile.ps1")
	original, err := encodeContent("Set-PSReadLineOption -EditMode Emacs\r\n", "utf-16le")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(target, original, 0o644))

	h := bindBlock(t, plugin.Settings{File: target, Encoding: "utf-16le", Marker: "# rigup:fnm-ps", Block: "fnm env --use-on-cd | Out-String | Invoke-Expression"})
	res := model.MustResource("# rigup:fnm-ps", model.KindConfigBlock, "")
	require.Equal(t, model.OutcomeInstalled, h.Install(context.Background(), environ.Env{}, res).Outcome)

	presence, err := h.Probe(context.Background(), environ.Env{}, res)
	require.NoError(t, err)
	require.Equal(t, model.Present, presence)

	raw, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xFE}, raw[:2])
	decoded, err := decodeContent(raw, "utf-16le")
	require.NoError(t, err)
	require.Contains(t, decoded, "Invoke-Expression\n# rigup:fnm-ps\n")
}

func TestPreview(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), ".bashrc")
	require.NoError(t, os.WriteFile(target, []byte("export EDITOR=vim\n"), 0o644))
	h := bindBlock(t, plugin.Settings{File: target}).(plugin.Previewer)

	preview, err := h.Preview(context.Background(), environ.Env{}, resource())
	require.NoError(t, err)
	assert.Contains(t, preview, "+"+marker)

	require.NoError(t, os.WriteFile(target, []byte(marker+"\n"), 0o644))
	preview, err = h.Preview(context.Background(), environ.Env{}, resource())
	require.NoError(t, err)
	assert.Empty(t, preview)
}

func TestProbeOnDirectoryIsIndeterminate(t *testing.T) {
	t.Parallel()

	presence, err := bindBlock(t, plugin.Settings{File: t.TempDir()}).Probe(context.Background(), environ.Env{}, resource())
	require.Equal(t, model.Absent, presence)
	var stateErr *plugin.StateError
	require.ErrorAs(t, err, &stateErr)
}

func TestAppendBlock(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "m\n", appendBlock("", "", "m"))
	assert.Equal(t, "a\nb\nm\n", appendBlock("a", "b\n\n", "m"))
	assert.Equal(t, "a\nb\nm\n", appendBlock("a\n", "b", "m"))
}
