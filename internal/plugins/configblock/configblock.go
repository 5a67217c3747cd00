package configblockplugin

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
	"github.com/alexisbeaulieu97/rigup/internal/model"
	"github.com/alexisbeaulieu97/rigup/internal/plugin"
	"github.com/alexisbeaulieu97/rigup/pkg/diff"
)

type configBlockPlugin struct {
	now func() time.Time
}

// New creates the config block plugin. The resource name of a config block
// step is its marker: the block counts as present whenever the marker text
// appears anywhere in the file.
func New() plugin.Plugin {
	return &configBlockPlugin{now: time.Now}
}

var _ plugin.Plugin = (*configBlockPlugin)(nil)

func (p *configBlockPlugin) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "config_block",
		Version:     "1.0.0",
		APIVersion:  "1.x",
		Kind:        model.KindConfigBlock,
		Description: "Appends a marked block to a configuration file once.",
	}
}

func (p *configBlockPlugin) Bind(settings plugin.Settings) (plugin.Handler, error) {
	switch {
	case strings.TrimSpace(settings.File) == "":
		return nil, plugin.NewValidationError(settings.StepID, errors.New("file is required"))
	case strings.TrimSpace(settings.Marker) == "":
		return nil, plugin.NewValidationError(settings.StepID, errors.New("marker is required"))
	case strings.Contains(settings.Marker, "\n"):
		return nil, plugin.NewValidationError(settings.StepID, errors.New("marker must be a single line"))
	case !SupportedEncoding(settings.Encoding):
		return nil, plugin.NewValidationError(settings.StepID, fmt.Errorf("unsupported encoding %q", settings.Encoding))
	}
	return &handler{settings: settings, now: p.now}, nil
}

type handler struct {
	settings plugin.Settings
	now      func() time.Time
}

func (h *handler) path(env environ.Env) (string, error) {
	path := env.ExpandHome(strings.TrimSpace(h.settings.File))
	if filepath.IsAbs(path) {
		return path, nil
	}
	return filepath.Abs(path)
}

func (h *handler) read(env environ.Env) (*fileState, error) {
	path, err := h.path(env)
	if err != nil {
		return nil, err
	}
	return readFileState(path, h.settings.Encoding)
}

func (h *handler) Probe(_ context.Context, env environ.Env, _ model.Resource) (model.PresenceResult, error) {
	state, err := h.read(env)
	if err != nil {
		return model.Absent, plugin.NewStateError(h.settings.StepID, err)
	}
	if state.Exists && strings.Contains(state.Content, h.settings.Marker) {
		return model.Present, nil
	}
	return model.Absent, nil
}

// Install re-checks the marker before writing so a block is never appended
// twice, even if the probe was skipped or raced.
func (h *handler) Install(_ context.Context, env environ.Env, res model.Resource) model.InstallResult {
	state, err := h.read(env)
	if err != nil {
		return model.Failed(plugin.NewExecutionError(h.settings.StepID, err))
	}
	if state.Exists && strings.Contains(state.Content, h.settings.Marker) {
		return model.AlreadyPresent(fmt.Sprintf("%s already contains %s", state.Path, res.Name()))
	}

	data, err := encodeContent(appendBlock(state.Content, h.settings.Block, h.settings.Marker), h.settings.Encoding)
	if err != nil {
		return model.Failed(plugin.NewExecutionError(h.settings.StepID, fmt.Errorf("encode %s: %w", state.Path, err)))
	}

	message := fmt.Sprintf("appended %s to %s", res.Name(), state.Path)
	if h.settings.Backup && state.Exists {
		backup, err := createBackup(state.Path, state.Raw, state.Permissions, h.now())
		if err != nil {
			return model.Failed(plugin.NewExecutionError(h.settings.StepID, fmt.Errorf("backup %s: %w", state.Path, err)))
		}
		message += " (backup " + backup + ")"
	}

	if err := writeFileAtomic(state.Path, data, state.Permissions); err != nil {
		return model.Failed(plugin.NewExecutionError(h.settings.StepID, fmt.Errorf("write %s: %w", state.Path, err)))
	}
	return model.Installed(message)
}

// Preview renders the change Install would make.
func (h *handler) Preview(_ context.Context, env environ.Env, _ model.Resource) (string, error) {
	state, err := h.read(env)
	if err != nil {
		return "", err
	}
	if state.Exists && strings.Contains(state.Content, h.settings.Marker) {
		return "", nil
	}
	after := appendBlock(state.Content, h.settings.Block, h.settings.Marker)
	return diff.Unified(state.Content, after, h.settings.File, h.settings.File+" (after)"), nil
}
