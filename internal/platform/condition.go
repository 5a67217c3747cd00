package platform

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/alexisbeaulieu97/rigup/internal/environ"
)

// Condition is a compiled boolean expression over the host platform and
// the run environment. Available names:
//
//	os, arch, distro   strings
//	wsl, windows, mac  booleans
//	env                map of environment variables
//	has(name)          whether an executable is on the run PATH
type Condition struct {
	source  string
	info    Info
	program *vm.Program
}

type conditionEnv struct {
	OS      string            `expr:"os"`
	Arch    string            `expr:"arch"`
	Distro  string            `expr:"distro"`
	WSL     bool              `expr:"wsl"`
	Windows bool              `expr:"windows"`
	Mac     bool              `expr:"mac"`
	Env     map[string]string `expr:"env"`
	Has     func(string) bool `expr:"has"`
}

// Compile parses source into a Condition evaluated against info.
func Compile(source string, info Info) (*Condition, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("empty condition")
	}
	program, err := expr.Compile(source, expr.Env(conditionEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid condition '%s': %w", source, err)
	}
	return &Condition{source: source, info: info, program: program}, nil
}

// Holds evaluates the condition in env.
func (c *Condition) Holds(env environ.Env) (bool, error) {
	vars := make(map[string]string)
	for _, pair := range env.Environ() {
		if key, value, ok := strings.Cut(pair, "="); ok {
			vars[key] = value
		}
	}

	output, err := expr.Run(c.program, conditionEnv{
		OS:      c.info.OS,
		Arch:    c.info.Arch,
		Distro:  c.info.Distro,
		WSL:     c.info.WSL,
		Windows: c.info.IsWindows(),
		Mac:     c.info.IsMac(),
		Env:     vars,
		Has: func(name string) bool {
			_, err := env.LookPath(name)
			return err == nil
		},
	})
	if err != nil {
		return false, fmt.Errorf("evaluation failed: %w", err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition must return a boolean, got %T", output)
	}
	return result, nil
}

func (c *Condition) String() string {
	return c.source
}
