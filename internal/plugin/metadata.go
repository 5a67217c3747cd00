package plugin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/alexisbeaulieu97/rigup/internal/model"
)

var (
	semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
	apiverPattern = regexp.MustCompile(`^\d+\.x$`)
)

// Metadata describes plugin identity.
type Metadata struct {
	Name        string     `json:"name"`
	Version     string     `json:"version"`
	APIVersion  string     `json:"api_version"`
	Kind        model.Kind `json:"kind"`
	Description string     `json:"description"`
	// Platforms lists the GOOS values the plugin supports; empty means any.
	Platforms []string `json:"platforms,omitempty"`
}

// Validate ensures metadata is well-formed.
func (m Metadata) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("plugin metadata requires a non-empty Name")
	}
	if strings.TrimSpace(m.Version) == "" {
		return fmt.Errorf("plugin '%s' metadata requires Version", m.Name)
	}
	if !semverPattern.MatchString(m.Version) {
		return fmt.Errorf("plugin '%s' has invalid Version '%s' (expected format: X.Y.Z)", m.Name, m.Version)
	}
	if strings.TrimSpace(m.APIVersion) == "" {
		return fmt.Errorf("plugin '%s' metadata requires APIVersion", m.Name)
	}
	if !apiverPattern.MatchString(m.APIVersion) {
		return fmt.Errorf("plugin '%s' has invalid APIVersion '%s' (expected format: N.x)", m.Name, m.APIVersion)
	}
	if !m.Kind.IsValid() {
		return fmt.Errorf("plugin '%s' declares unknown kind '%s'", m.Name, m.Kind)
	}
	return nil
}

// Supports reports whether the plugin runs on goos.
func (m Metadata) Supports(goos string) bool {
	if len(m.Platforms) == 0 {
		return true
	}
	for _, p := range m.Platforms {
		if p == goos {
			return true
		}
	}
	return false
}
