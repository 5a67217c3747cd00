// Package environ models the process environment of a provisioning run as an
// initial snapshot plus an ordered list of deltas. Steps receive an Env value
// explicitly instead of reading or mutating the ambient process environment,
// so an install that puts a tool on PATH is visible to later steps only
// through the deltas the run applied.
package environ

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// Op is the kind of change a Delta makes.
type Op int

const (
	// OpSet assigns a variable.
	OpSet Op = iota
	// OpPathPrepend puts a directory at the front of PATH.
	OpPathPrepend
	// OpUnset removes a variable.
	OpUnset
)

// Delta is a single environment change.
type Delta struct {
	Op    Op
	Key   string
	Value string
}

// Set returns a delta assigning key=value.
func Set(key, value string) Delta { return Delta{Op: OpSet, Key: key, Value: value} }

// Unset returns a delta removing key.
func Unset(key string) Delta { return Delta{Op: OpUnset, Key: key} }

// PrependPath returns a delta putting dir at the front of PATH. A leading
// "~" is expanded against the environment's home when applied.
func PrependPath(dir string) Delta { return Delta{Op: OpPathPrepend, Key: PathKey, Value: dir} }

func (d Delta) String() string {
	switch d.Op {
	case OpPathPrepend:
		return fmt.Sprintf("PATH+=%s", d.Value)
	case OpUnset:
		return fmt.Sprintf("unset %s", d.Key)
	default:
		return fmt.Sprintf("%s=%s", d.Key, d.Value)
	}
}

// PathKey is the canonical name of the search path variable.
const PathKey = "PATH"

// ErrNotFound is returned by LookPath when no executable matches.
var ErrNotFound = errors.New("executable file not found in PATH")

// Env is an immutable environment value. The zero value is an empty environment.
type Env struct {
	vars   map[string]string
	deltas []Delta
}

// New builds an Env from KEY=VALUE pairs such as os.Environ().
func New(pairs []string) Env {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		vars[normalizeKey(key)] = value
	}
	return Env{vars: vars}
}

// FromProcess snapshots the current process environment.
func FromProcess() Env {
	return New(os.Environ())
}

// Load snapshots base and overlays the variables from the given dotenv files
// as Set deltas, in file order.
func Load(base []string, files ...string) (Env, error) {
	env := New(base)
	for _, file := range files {
		if strings.TrimSpace(file) == "" {
			continue
		}
		path := env.ExpandHome(file)
		values, err := godotenv.Read(path)
		if err != nil {
			return Env{}, fmt.Errorf("read env file %s: %w", path, err)
		}
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			env = env.With(Set(key, values[key]))
		}
	}
	return env, nil
}

// With returns a new Env with deltas applied in order. The receiver is unchanged.
func (e Env) With(deltas ...Delta) Env {
	vars := make(map[string]string, len(e.vars)+len(deltas))
	for k, v := range e.vars {
		vars[k] = v
	}
	next := Env{vars: vars, deltas: append(append([]Delta(nil), e.deltas...), deltas...)}

	for _, d := range deltas {
		key := normalizeKey(d.Key)
		switch d.Op {
		case OpSet:
			vars[key] = d.Value
		case OpUnset:
			delete(vars, key)
		case OpPathPrepend:
			dir := next.ExpandHome(d.Value)
			current := vars[normalizeKey(PathKey)]
			if current == "" {
				vars[normalizeKey(PathKey)] = dir
			} else if !containsPath(current, dir) {
				vars[normalizeKey(PathKey)] = dir + string(os.PathListSeparator) + current
			}
		}
	}
	return next
}

// Deltas returns the changes applied since the initial snapshot.
func (e Env) Deltas() []Delta {
	return append([]Delta(nil), e.deltas...)
}

// Get returns the value of key, or "".
func (e Env) Get(key string) string {
	return e.vars[normalizeKey(key)]
}

// Lookup returns the value of key and whether it is set.
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e.vars[normalizeKey(key)]
	return v, ok
}

// Environ renders the environment as sorted KEY=VALUE pairs for exec.Cmd.Env.
func (e Env) Environ() []string {
	out := make([]string, 0, len(e.vars))
	for k, v := range e.vars {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// Home returns the user's home directory according to this environment.
func (e Env) Home() string {
	if home := e.Get("HOME"); home != "" {
		return home
	}
	return e.Get("USERPROFILE")
}

// ExpandHome replaces a leading "~" with Home.
func (e Env) ExpandHome(path string) string {
	path = strings.TrimSpace(path)
	home := e.Home()
	if home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(home, path[2:])
	}
	return path
}

// LookPath searches this environment's PATH for an executable named name.
// Names containing a path separator are checked directly.
func (e Env) LookPath(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		if path, ok := executable(e.ExpandHome(name), e.pathExts()); ok {
			return path, nil
		}
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	for _, dir := range filepath.SplitList(e.Get(PathKey)) {
		if dir == "" {
			continue
		}
		if path, ok := executable(filepath.Join(dir, name), e.pathExts()); ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

func (e Env) pathExts() []string {
	if runtime.GOOS != "windows" {
		return nil
	}
	exts := e.Get("PATHEXT")
	if exts == "" {
		exts = ".COM;.EXE;.BAT;.CMD"
	}
	return strings.Split(strings.ToLower(exts), ";")
}

func executable(path string, exts []string) (string, bool) {
	if len(exts) > 0 {
		if filepath.Ext(path) != "" && isExecutableFile(path, true) {
			return path, true
		}
		for _, ext := range exts {
			if isExecutableFile(path+ext, true) {
				return path + ext, true
			}
		}
		return "", false
	}
	return path, isExecutableFile(path, false)
}

func isExecutableFile(path string, anyMode bool) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return anyMode || info.Mode().Perm()&0o111 != 0
}

func containsPath(list, dir string) bool {
	for _, entry := range filepath.SplitList(list) {
		if filepath.Clean(entry) == filepath.Clean(dir) {
			return true
		}
	}
	return false
}

func normalizeKey(key string) string {
	if runtime.GOOS == "windows" {
		return strings.ToUpper(key)
	}
	return key
}
