package model

import (
	"fmt"
	"strings"
)

// Kind classifies the external thing a step ensures is present.
type Kind string

const (
	// KindBinary is an executable expected on PATH.
	KindBinary Kind = "binary"
	// KindPackage is anything installed through a package or version manager.
	KindPackage Kind = "package"
	// KindConfigBlock is a marker-delimited block of text in a file.
	KindConfigBlock Kind = "config_block"
	// KindExtension is an editor extension.
	KindExtension Kind = "extension"
)

// Version constraints understood by the package and version-manager adapters.
const (
	VersionLatest = "latest"
	VersionLTS    = "lts"
)

var validKinds = []Kind{KindBinary, KindPackage, KindConfigBlock, KindExtension}

// IsValid reports whether k is a known resource kind.
func (k Kind) IsValid() bool {
	for _, candidate := range validKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// Resource identifies an external thing to ensure present. It is immutable
// once constructed.
type Resource struct {
	name    string
	kind    Kind
	version string
}

// NewResource validates and constructs a Resource.
func NewResource(name string, kind Kind, versionConstraint string) (Resource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Resource{}, fmt.Errorf("resource name is required")
	}
	if !kind.IsValid() {
		return Resource{}, fmt.Errorf("unknown resource kind %q", kind)
	}
	return Resource{name: name, kind: kind, version: strings.TrimSpace(versionConstraint)}, nil
}

// MustResource is NewResource for static tables; it panics on invalid input.
func MustResource(name string, kind Kind, versionConstraint string) Resource {
	res, err := NewResource(name, kind, versionConstraint)
	if err != nil {
		panic(err)
	}
	return res
}

// Name returns the resource identifier (package id, extension id, binary name or marker).
func (r Resource) Name() string { return r.name }

// Kind returns the resource kind.
func (r Resource) Kind() Kind { return r.kind }

// VersionConstraint returns the optional version constraint, or "".
func (r Resource) VersionConstraint() string { return r.version }

// String renders kind:name[@version].
func (r Resource) String() string {
	if r.version == "" {
		return fmt.Sprintf("%s:%s", r.kind, r.name)
	}
	return fmt.Sprintf("%s:%s@%s", r.kind, r.name, r.version)
}
