package plugin

import (
	"fmt"
	"strconv"
	"strings"
)

// HostAPIVersion is the plugin API major version this build understands.
const HostAPIVersion = "1.x"

// VersionConstraint restricts acceptable versions to a single major version.
type VersionConstraint struct {
	MajorVersion int
}

// ParseVersionConstraint parses a string in the form "N.x" into a VersionConstraint.
func ParseVersionConstraint(s string) (*VersionConstraint, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, fmt.Errorf("version constraint string is empty")
	}

	major, suffix, ok := strings.Cut(trimmed, ".")
	if !ok || suffix != "x" {
		return nil, fmt.Errorf("invalid version constraint '%s' (expected format: N.x)", s)
	}

	n, err := strconv.Atoi(major)
	if err != nil {
		return nil, fmt.Errorf("invalid major version in constraint '%s'", s)
	}
	if n < 0 {
		return nil, fmt.Errorf("major version must be non-negative in constraint '%s'", s)
	}

	return &VersionConstraint{MajorVersion: n}, nil
}

// MustParseVersionConstraint panics if the constraint cannot be parsed.
func MustParseVersionConstraint(s string) *VersionConstraint {
	vc, err := ParseVersionConstraint(s)
	if err != nil {
		panic(err)
	}
	return vc
}

// Satisfies reports whether version ("1.2.3" or "1.x") has the constraint's major version.
func (vc *VersionConstraint) Satisfies(version string) bool {
	if vc == nil {
		return true
	}
	major, _, _ := strings.Cut(strings.TrimSpace(version), ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return false
	}
	return n == vc.MajorVersion
}

func (vc *VersionConstraint) String() string {
	if vc == nil {
		return ""
	}
	return fmt.Sprintf("%d.x", vc.MajorVersion)
}
