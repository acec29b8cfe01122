// Package testutil provides shared test helpers for dingle's scenario tests.
package testutil

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ScenariosDir is the relative path from the module root to the scenarios.
const ScenariosDir = "testdata/scenarios"

// Scenario is one end-to-end case loaded from scenario.yaml.
type Scenario struct {
	// Cmd is the command and its file argument, e.g. [run, main.dingle].
	// The repl command feeds Lines to the session one entry at a time.
	Cmd    []string       `yaml:"cmd"`
	Lines  []string       `yaml:"lines,omitempty"`
	JSON   bool           `yaml:"json,omitempty"`
	Meta   *ScenarioMeta  `yaml:"meta,omitempty"`
	Expect ExpectedResult `yaml:"expect"`
}

// ScenarioMeta holds optional scenario metadata.
type ScenarioMeta struct {
	Tags []string `yaml:"tags,omitempty"`
}

// ExpectedResult describes the expected outcome of running a scenario.
type ExpectedResult struct {
	ExitCode         int              `yaml:"exitCode"`
	StdoutText       *string          `yaml:"stdoutText,omitempty"`
	StdoutContains   string           `yaml:"stdoutContains,omitempty"`
	StderrContains   []string         `yaml:"stderrContains,omitempty"`
	StderrJSONSubset []map[string]any `yaml:"stderrJsonSubset,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.yaml.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.yaml"))
	if err != nil {
		return nil, errors.Wrap(err, "reading scenario")
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", dir)
	}
	if len(s.Cmd) == 0 {
		return nil, errors.Errorf("%s: cmd is empty", dir)
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under root, sorted.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			scenarioPath := filepath.Join(root, e.Name(), "scenario.yaml")
			if _, err := os.Stat(scenarioPath); err == nil {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ReadProgramFile reads the program file referenced by the scenario cmd.
// It returns the source and the path it was read from.
func ReadProgramFile(scenarioDir string, cmd []string) (string, string, error) {
	if len(cmd) < 2 {
		return "", "", nil
	}
	path := filepath.Join(scenarioDir, cmd[1])
	source, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return string(source), path, nil
}

// IsSubset reports whether expected is contained in actual, comparing
// decoded JSON or YAML values. Maps match on the keys expected names;
// lists match element-wise on a prefix.
func IsSubset(expected, actual any) bool {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			av, exists := a[k]
			if !exists || !IsSubset(ev, av) {
				return false
			}
		}
		return true

	case []any:
		a, ok := actual.([]any)
		if !ok || len(e) > len(a) {
			return false
		}
		for i, ev := range e {
			if !IsSubset(ev, a[i]) {
				return false
			}
		}
		return true

	case int:
		af, ok := actual.(float64)
		return ok && float64(e) == af

	case float64:
		af, ok := actual.(float64)
		return ok && e == af

	case nil:
		return actual == nil

	default:
		return expected == actual
	}
}
