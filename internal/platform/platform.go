// Package platform describes the machine rigup runs on and evaluates the
// `when` conditions that gate steps on it.
package platform

import (
	"os"
	"runtime"
	"strings"
	"sync"
)

// Info is a snapshot of the host platform.
type Info struct {
	OS     string
	Arch   string
	WSL    bool
	Distro string
}

// IsWindows reports whether the host is native Windows.
func (i Info) IsWindows() bool { return i.OS == "windows" }

// IsMac reports whether the host is macOS.
func (i Info) IsMac() bool { return i.OS == "darwin" }

// WindowsReachable reports whether Windows tooling (winget, code) can be
// invoked, natively or through WSL interop.
func (i Info) WindowsReachable() bool { return i.IsWindows() || i.WSL }

// ExeName returns the name a Windows executable is invoked by from this host.
// Under WSL the .exe suffix is required for interop.
func (i Info) ExeName(name string) string {
	if i.WSL && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name + ".exe"
	}
	return name
}

var (
	detected   Info
	detectOnce sync.Once
)

// Detect returns the host platform. The result is computed once.
func Detect() Info {
	detectOnce.Do(func() {
		detected = detect(runtime.GOOS, runtime.GOARCH, os.ReadFile, os.Getenv)
	})
	return detected
}

func detect(goos, arch string, readFile func(string) ([]byte, error), getenv func(string) string) Info {
	info := Info{OS: goos, Arch: arch}
	if goos != "linux" {
		return info
	}

	if data, err := readFile("/proc/version"); err == nil {
		version := strings.ToLower(string(data))
		info.WSL = strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
	}

	if distro := getenv("WSL_DISTRO_NAME"); distro != "" {
		info.Distro = distro
		return info
	}
	if data, err := readFile("/etc/os-release"); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			if strings.HasPrefix(line, "ID=") {
				info.Distro = strings.Trim(strings.TrimPrefix(line, "ID="), "\"")
				break
			}
		}
	}
	return info
}
