// Package config loads dingle settings from YAML files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// ProjectFile is the per-project config file name.
const ProjectFile = ".dingle.yaml"

// Config holds every setting the CLI reads.
type Config struct {
	Repl        Repl        `yaml:"repl"`
	Diagnostics Diagnostics `yaml:"diagnostics"`
	Log         Log         `yaml:"log"`
}

// Repl configures the interactive prompt.
type Repl struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`
	Banner      bool   `yaml:"banner"`
}

// Diagnostics configures error rendering.
type Diagnostics struct {
	Color bool `yaml:"color"`
	JSON  bool `yaml:"json"`
}

// Log configures the CLI logger.
type Log struct {
	Level string `yaml:"level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Repl: Repl{
			Prompt:      "> ",
			HistoryFile: "~/.dingle_history",
			Banner:      true,
		},
		Diagnostics: Diagnostics{Color: true},
		Log:         Log{Level: "warn"},
	}
}

// Load resolves settings with the precedence: explicit path → project
// (.dingle.yaml in projectDir) → user (~/.dingle/config.yaml) → defaults.
// The first file found is used; keys it leaves out keep their defaults.
// It returns the path that was loaded, or "" for defaults.
func Load(explicit, projectDir string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := loadFile(explicit)
		if err != nil {
			return nil, "", err
		}
		return cfg, explicit, nil
	}

	candidates := []string{filepath.Join(projectDir, ProjectFile)}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".dingle", "config.yaml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := loadFile(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	return Default(), "", nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if _, err := cfg.LogLevel(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// ApplyEnv applies environment overrides. A non-empty NO_COLOR turns color off.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv("NO_COLOR") != "" {
		c.Diagnostics.Color = false
	}
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return lvl, errors.Wrapf(err, "invalid log level %q", c.Log.Level)
	}
	return lvl, nil
}

// HistoryPath expands a leading ~/ in Repl.HistoryFile. It returns "" when
// history is disabled or the home directory is unknown.
func (c *Config) HistoryPath() string {
	p := c.Repl.HistoryFile
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, p[2:])
}
