package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scenario.yaml"), []byte(`
cmd: [run, main.dingle]
expect:
  exitCode: 3
  stdoutText: ""
  stderrContains: [E_TYPE]
  stderrJsonSubset:
    - code: E_TYPE
      span: {line: 2}
`), 0o644))

	s, err := LoadScenario(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"run", "main.dingle"}, s.Cmd)
	assert.Equal(t, 3, s.Expect.ExitCode)
	require.NotNil(t, s.Expect.StdoutText)
	assert.Equal(t, "", *s.Expect.StdoutText)
	require.Len(t, s.Expect.StderrJSONSubset, 1)
	assert.Equal(t, "E_TYPE", s.Expect.StderrJSONSubset[0]["code"])
}

func TestLoadScenarioErrors(t *testing.T) {
	_, err := LoadScenario(t.TempDir())
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scenario.yaml"), []byte("expect: {exitCode: 0}\n"), 0o644))
	_, err = LoadScenario(dir)
	assert.ErrorContains(t, err, "cmd is empty")
}

func TestListScenarios(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b", "a"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, name), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, name, "scenario.yaml"), []byte("cmd: [run]\n"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	dirs, err := ListScenarios(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "a"), filepath.Join(root, "b")}, dirs)
}

func TestIsSubset(t *testing.T) {
	actual := map[string]any{
		"code": "E_TYPE",
		"span": map[string]any{"line": float64(2), "col": float64(7)},
		"list": []any{"x", "y"},
	}
	assert.True(t, IsSubset(map[string]any{"code": "E_TYPE"}, actual))
	assert.True(t, IsSubset(map[string]any{"span": map[string]any{"line": 2}}, actual))
	assert.True(t, IsSubset(map[string]any{"list": []any{"x"}}, actual))
	assert.False(t, IsSubset(map[string]any{"code": "E_PARSE"}, actual))
	assert.False(t, IsSubset(map[string]any{"hint": "x"}, actual))
	assert.False(t, IsSubset(map[string]any{"list": []any{"x", "y", "z"}}, actual))
}
