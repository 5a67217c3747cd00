package main

import (
	"io"
	"os"
	"runtime"

	"golang.org/x/term"

	"github.com/alexisbeaulieu97/rigup/internal/platform"
	"github.com/alexisbeaulieu97/rigup/internal/plugins/cmdexec"
)

// app bundles the host services commands depend on. Tests replace them.
type app struct {
	runner   cmdexec.Runner
	platform func() platform.Info
	environ  func() []string
	terminal func(w io.Writer) bool
	euid     func() int
}

func defaultApp() *app {
	return &app{
		runner:   cmdexec.Exec{},
		platform: platform.Detect,
		environ:  os.Environ,
		terminal: isTerminal,
		euid:     os.Geteuid,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// needsSudo reports whether system package installs must be elevated.
func (a *app) needsSudo(info platform.Info) bool {
	return info.OS == "linux" && runtime.GOOS == "linux" && a.euid() > 0
}
