package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dinglebob/dingle/internal/testutil"
	"github.com/dinglebob/dingle/pkg/diagnostics"
	"github.com/dinglebob/dingle/pkg/session"
)

func TestConformance(t *testing.T) {
	dirs, err := testutil.ListScenarios(testutil.ScenariosDir)
	require.NoError(t, err)
	require.NotEmpty(t, dirs)

	for _, dir := range dirs {
		dir := dir
		t.Run(filepath.Base(dir), func(t *testing.T) {
			scenario, err := testutil.LoadScenario(dir)
			require.NoError(t, err)

			var out, errs bytes.Buffer
			sess := session.New(
				session.WithStdout(&out),
				session.WithStderr(&errs),
				session.WithDiagOptions(diagnostics.Options{JSON: scenario.JSON}),
			)

			var code int
			switch scenario.Cmd[0] {
			case "run":
				code = session.ExitCode(sess.RunFile(filepath.Join(dir, scenario.Cmd[1])))
			case "check":
				source, path, err := testutil.ReadProgramFile(dir, scenario.Cmd)
				require.NoError(t, err)
				if diags := sess.Check(source, path); len(diags) > 0 {
					derr := &session.DiagnosticError{Diagnostics: diags}
					errs.WriteString(sess.Render(derr, source, path) + "\n")
					code = session.ExitCode(derr)
				}
			case "repl":
				for _, line := range scenario.Lines {
					code = session.ExitCode(sess.RunLine(line))
				}
			default:
				t.Fatalf("unsupported command: %s", scenario.Cmd[0])
			}

			checkExpectations(t, scenario, code, out.String(), errs.String())
		})
	}
}

func checkExpectations(t *testing.T, scenario *testutil.Scenario, code int, stdout, stderr string) {
	t.Helper()
	want := scenario.Expect

	assert.Equal(t, want.ExitCode, code, "exit code (stderr: %s)", stderr)
	if want.StdoutText != nil {
		assert.Equal(t, *want.StdoutText, stdout)
	}
	if want.StdoutContains != "" {
		assert.Contains(t, stdout, want.StdoutContains)
	}
	for _, s := range want.StderrContains {
		assert.Contains(t, stderr, s)
	}
	if len(want.StderrJSONSubset) > 0 {
		actual := decodeDiagnostics(t, stderr)
		for _, expected := range want.StderrJSONSubset {
			found := false
			for _, a := range actual {
				if testutil.IsSubset(expected, a) {
					found = true
					break
				}
			}
			assert.True(t, found, "stderr JSON subset not found: %v in %s", expected, stderr)
		}
	}
}

// decodeDiagnostics reads the one-object-per-line JSON diagnostics the
// session writes.
func decodeDiagnostics(t *testing.T, stderr string) []any {
	t.Helper()
	var out []any
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var v map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &v), "stderr line %q", line)
		out = append(out, v)
	}
	return out
}
