package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListShowsStepsInOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	path := env.writeConfig(t, applyConfig)

	out, err := env.execute("list", "-c", path)
	require.NoError(t, err)
	require.Contains(t, out, " 1. git  package via brew  git")
	require.Contains(t, out, " 2. tool  binary  rigup-tool")
	require.Contains(t, out, " 3. eslint  extension  dbaeumer.vscode-eslint [best effort]")
	require.Contains(t, out, " 4. profile  config_block  # rigup:test")
	require.Empty(t, env.runner.Calls(), "listing never probes")
}

func TestListJSON(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	path := env.writeConfig(t, applyConfig)

	out, err := env.execute("list", "-c", path, "--json")
	require.NoError(t, err)

	var steps []stepJSON
	require.NoError(t, json.Unmarshal([]byte(out), &steps))
	require.Len(t, steps, 4)
	require.Equal(t, "brew", steps[0].Plugin)
	require.Equal(t, "config_block", steps[3].Plugin)
	require.True(t, steps[2].BestEffort)
}

func TestListPlugins(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	out, err := env.execute("list", "--plugins")
	require.NoError(t, err)
	for _, name := range []string{"apt", "binary", "brew", "config_block", "extension", "fnm", "npm", "uv", "uvtool", "winget"} {
		require.Contains(t, out, name)
	}

	out, err = env.execute("list", "--plugins", "--json")
	require.NoError(t, err)
	var metas []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &metas))
	require.Len(t, metas, 10)
	require.Equal(t, "apt", metas[0]["name"])
}
