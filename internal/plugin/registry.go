package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/alexisbeaulieu97/rigup/internal/logger"
	"github.com/alexisbeaulieu97/rigup/internal/model"
)

// Registry holds the plugins available to a run, keyed by name.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	host    *VersionConstraint
	logger  *logger.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{
		plugins: make(map[string]Plugin),
		host:    MustParseVersionConstraint(HostAPIVersion),
		logger:  log,
	}
}

// Register adds a plugin. Names must be unique and the plugin's API version
// must match the host's.
func (r *Registry) Register(p Plugin) error {
	if p == nil {
		return fmt.Errorf("plugin is nil")
	}

	meta := p.Metadata()
	if err := meta.Validate(); err != nil {
		return err
	}
	if !r.host.Satisfies(meta.APIVersion) {
		return fmt.Errorf("plugin '%s' targets API %s, host provides %s", meta.Name, meta.APIVersion, r.host)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[meta.Name]; exists {
		return fmt.Errorf("plugin '%s' already registered", meta.Name)
	}
	r.plugins[meta.Name] = p
	r.logger.WithFields(map[string]any{"plugin": meta.Name, "kind": string(meta.Kind)}).Debug("plugin registered")
	return nil
}

// MustRegister registers every plugin and panics on the first error.
func (r *Registry) MustRegister(plugins ...Plugin) {
	for _, p := range plugins {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
}

// Get retrieves a plugin by name.
func (r *Registry) Get(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]
	if !ok {
		return nil, ErrPluginNotFound{Name: name, Available: r.namesLocked()}
	}
	return p, nil
}

// ForKind retrieves a plugin by name and checks it manages kind.
func (r *Registry) ForKind(name string, kind model.Kind) (Plugin, error) {
	p, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if got := p.Metadata().Kind; got != kind {
		return nil, ErrKindMismatch{Plugin: name, Want: string(kind), Got: string(got)}
	}
	return p, nil
}

// Names returns the registered plugin names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

// List returns metadata for every registered plugin, sorted by name.
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Metadata, 0, len(r.plugins))
	for _, name := range r.namesLocked() {
		out = append(out, r.plugins[name].Metadata())
	}
	return out
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
