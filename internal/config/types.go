package config

import (
	"sort"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
	"github.com/alexisbeaulieu97/rigup/internal/model"
)

// Config represents a rigup workstation document.
type Config struct {
	Version     string   `yaml:"version" validate:"required,semver"`
	Name        string   `yaml:"name" validate:"required,min=1,max=100"`
	Description string   `yaml:"description,omitempty"`
	Settings    Settings `yaml:"settings,omitempty"`
	Steps       []Step   `yaml:"steps" validate:"required,min=1,dive"`
}

// Settings holds run-wide parameters.
type Settings struct {
	// EnvFile is a dotenv file layered over the process environment.
	EnvFile string `yaml:"env_file,omitempty"`
	// StepTimeout bounds each step, in seconds.
	StepTimeout int `yaml:"step_timeout,omitempty" validate:"omitempty,min=1,max=86400"`
}

// StepTimeoutDuration returns the per-step bound, or zero for none.
func (s Settings) StepTimeoutDuration() time.Duration {
	return time.Duration(s.StepTimeout) * time.Second
}

// Step describes one resource to ensure present. Which fields apply depends
// on Kind.
type Step struct {
	ID         string `yaml:"id" validate:"required,step_id"`
	Name       string `yaml:"name,omitempty"`
	Kind       string `yaml:"kind" validate:"required,kind"`
	When       string `yaml:"when,omitempty"`
	BestEffort bool   `yaml:"best_effort,omitempty"`

	// package
	Manager string `yaml:"manager,omitempty" validate:"omitempty,step_id"`
	Package string `yaml:"package,omitempty"`
	Version string `yaml:"version,omitempty" validate:"omitempty,version_constraint"`

	// binary
	Binary  string       `yaml:"binary,omitempty"`
	Install *InstallSpec `yaml:"install,omitempty"`

	// extension
	Editor    string `yaml:"editor,omitempty"`
	Extension string `yaml:"extension,omitempty"`

	// config_block
	File     string `yaml:"file,omitempty"`
	Marker   string `yaml:"marker,omitempty"`
	Block    string `yaml:"block,omitempty"`
	Backup   bool   `yaml:"backup,omitempty"`
	Encoding string `yaml:"encoding,omitempty"`

	Env *EnvSpec `yaml:"env,omitempty"`
}

// InstallSpec is the shell command that installs a binary.
type InstallSpec struct {
	Command string `yaml:"command" validate:"required,min=1"`
	Shell   string `yaml:"shell,omitempty"`
}

// EnvSpec lists environment changes applied once a step's resource is present.
type EnvSpec struct {
	PathPrepend []string          `yaml:"path_prepend,omitempty" validate:"omitempty,dive,min=1"`
	Set         map[string]string `yaml:"set,omitempty"`
}

// Deltas converts the spec into ordered environment deltas: PATH entries in
// declaration order, then variables sorted by name.
func (e *EnvSpec) Deltas() []environ.Delta {
	if e == nil {
		return nil
	}
	deltas := make([]environ.Delta, 0, len(e.PathPrepend)+len(e.Set))
	for _, dir := range e.PathPrepend {
		deltas = append(deltas, environ.PrependPath(dir))
	}
	keys := make([]string, 0, len(e.Set))
	for key := range e.Set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		deltas = append(deltas, environ.Set(key, e.Set[key]))
	}
	return deltas
}

// ResourceKind returns the step's kind as a model value.
func (s Step) ResourceKind() model.Kind {
	return model.Kind(s.Kind)
}

// ResourceName returns the identifier of the resource the step manages.
func (s Step) ResourceName() string {
	switch s.ResourceKind() {
	case model.KindPackage:
		return s.Package
	case model.KindBinary:
		return s.Binary
	case model.KindExtension:
		return s.Extension
	case model.KindConfigBlock:
		return s.Marker
	default:
		return ""
	}
}

// PluginName returns the plugin that handles the step. Only package steps
// choose between managers; every other kind has a single plugin.
func (s Step) PluginName() string {
	if s.ResourceKind() == model.KindPackage {
		return strings.TrimSpace(s.Manager)
	}
	return s.Kind
}

// DisplayName returns the step name, falling back to its ID.
func (s Step) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}
