package pkgmgrplugin

import (
	"fmt"
	"strings"

	"github.com/alexisbeaulieu97/rigup/internal/model"
	"github.com/alexisbeaulieu97/rigup/internal/plugin"
	"github.com/alexisbeaulieu97/rigup/internal/plugins/cmdexec"
)

// winget exit codes (APPINSTALLER_CLI_ERROR_*).
const (
	wingetNoApplicationsFound     = 0x8A150014
	wingetUpdateNotApplicable     = 0x8A15002B
	wingetPackageAlreadyInstalled = 0x8A150061
)

// NewWinget returns the Windows Package Manager plugin.
func NewWinget(opts Options) plugin.Plugin {
	return newManager(commands{
		name:        "winget",
		description: "Installs Windows packages with winget.",
		binary:      "winget",
		windowsTool: true,
		platforms:   []string{"windows", "linux"},
		query: func(pkg string) []string {
			return []string{"list", "--id", pkg, "--exact", "--accept-source-agreements", "--disable-interactivity"}
		},
		installed: func(out cmdexec.Result, res model.Resource) (bool, error) {
			if !out.Success() {
				return false, fmt.Errorf("winget list exited %d: %s", out.ExitCode, out.PrimaryOutput())
			}
			listing := strings.ToLower(out.Stdout)
			if !strings.Contains(listing, strings.ToLower(res.Name())) {
				return false, nil
			}
			return versionListed(listing, res.VersionConstraint()), nil
		},
		install: func(res model.Resource) []string {
			args := []string{"install", "--id", res.Name(), "--exact", "--silent",
				"--accept-source-agreements", "--accept-package-agreements", "--disable-interactivity"}
			if v := concreteVersion(res.VersionConstraint()); v != "" {
				args = append(args, "--version", v)
			}
			return args
		},
		upgrade: func(pkg string) []string {
			return []string{"upgrade", "--id", pkg, "--exact", "--silent",
				"--accept-source-agreements", "--accept-package-agreements", "--disable-interactivity"}
		},
		alreadyInstalled: cmdexec.ExitCodes{wingetPackageAlreadyInstalled, wingetUpdateNotApplicable},
		noUpgrade:        cmdexec.ExitCodes{wingetUpdateNotApplicable, wingetPackageAlreadyInstalled},
		notFound:         cmdexec.ExitCodes{wingetNoApplicationsFound},
	}, opts)
}

// NewBrew returns the Homebrew plugin. Names prefixed with "cask:" are
// installed as casks.
func NewBrew(opts Options) plugin.Plugin {
	return newManager(commands{
		name:        "brew",
		description: "Installs formulae and casks with Homebrew.",
		binary:      "brew",
		platforms:   []string{"darwin", "linux"},
		query: func(pkg string) []string {
			return append([]string{"list", "--versions"}, brewTarget(pkg)...)
		},
		installed: func(out cmdexec.Result, res model.Resource) (bool, error) {
			if out.ExitCode == 1 && strings.TrimSpace(out.Stdout) == "" {
				return false, nil
			}
			if !out.Success() {
				return false, fmt.Errorf("brew list exited %d: %s", out.ExitCode, out.PrimaryOutput())
			}
			if strings.TrimSpace(out.Stdout) == "" {
				return false, nil
			}
			return versionListed(strings.ToLower(out.Stdout), res.VersionConstraint()), nil
		},
		outdated: func(pkg string) []string {
			return append([]string{"outdated", "--quiet"}, brewTarget(pkg)...)
		},
		install: func(res model.Resource) []string {
			return append([]string{"install"}, brewTarget(res.Name())...)
		},
		upgrade: func(pkg string) []string {
			return append([]string{"upgrade"}, brewTarget(pkg)...)
		},
	}, opts)
}

// NewApt returns the Debian/Ubuntu plugin.
func NewApt(opts Options) plugin.Plugin {
	return newManager(commands{
		name:        "apt",
		description: "Installs Debian packages with apt-get.",
		binary:        "dpkg-query",
		installBinary: "apt-get",
		platforms:     []string{"linux"},
		query: func(pkg string) []string {
			return []string{"-W", "-f=${Status} ${Version}", pkg}
		},
		installed: func(out cmdexec.Result, res model.Resource) (bool, error) {
			if out.ExitCode == 1 {
				return false, nil
			}
			if !out.Success() {
				return false, fmt.Errorf("dpkg-query exited %d: %s", out.ExitCode, out.PrimaryOutput())
			}
			if !strings.Contains(out.Stdout, "install ok installed") {
				return false, nil
			}
			return versionListed(out.Stdout, res.VersionConstraint()), nil
		},
		install: func(res model.Resource) []string {
			target := res.Name()
			if v := concreteVersion(res.VersionConstraint()); v != "" {
				target += "=" + v
			}
			return []string{"install", "-y", "--no-install-recommends", target}
		},
		sudo: true,
	}, opts)
}

func brewTarget(pkg string) []string {
	if cask, ok := strings.CutPrefix(pkg, "cask:"); ok {
		return []string{"--cask", cask}
	}
	return []string{pkg}
}

func concreteVersion(constraint string) string {
	switch constraint {
	case "", model.VersionLatest, model.VersionLTS:
		return ""
	default:
		return constraint
	}
}

func versionListed(listing, constraint string) bool {
	v := concreteVersion(constraint)
	return v == "" || strings.Contains(listing, strings.ToLower(v))
}
