package plugin

import (
	"context"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
	"github.com/alexisbeaulieu97/rigup/internal/model"
)

// Plugin is an adapter to one external tool (a package manager, a version
// manager, an editor CLI). The registry keys plugins by Metadata().Name,
// which is what a step's `manager` field refers to.
type Plugin interface {
	Metadata() Metadata

	// Bind returns the handler for a single step. Plugins that need no
	// per-step settings may return a shared handler.
	Bind(settings Settings) (Handler, error)
}

// Handler answers the two questions a step asks of an external tool.
//
// Probe must be read-only. It returns an error when presence cannot be
// determined; the caller treats that as absent.
//
// Install must be idempotent at the tool level: exit codes the tool uses for
// "already installed" or "nothing to upgrade" are reported as AlreadyPresent.
type Handler interface {
	Probe(ctx context.Context, env environ.Env, res model.Resource) (model.PresenceResult, error)
	Install(ctx context.Context, env environ.Env, res model.Resource) model.InstallResult
}

// Previewer is implemented by handlers that can describe a pending install.
type Previewer interface {
	Preview(ctx context.Context, env environ.Env, res model.Resource) (string, error)
}

// Settings carries the step fields a plugin may need beyond its Resource.
type Settings struct {
	StepID string

	// Editor is the editor CLI for extension steps (code, cursor, ...).
	Editor string

	// Command installs a binary step; Shell overrides the interpreter.
	Command string
	Shell   string

	// File, Marker and Block describe a config block step.
	File     string
	Marker   string
	Block    string
	Backup   bool
	Encoding string
}
