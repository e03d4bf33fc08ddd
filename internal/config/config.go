// Package config loads server configuration from a .manifest-lsp.kdl file
// in the project root, falling back to defaults when none exists.
package config

import (
	"path/filepath"
	"time"

	"github.com/standardbeagle/manifest-lsp/internal/types"
)

// Defaults applied when the config file omits a value.
const (
	DefaultRunnerBinary     = "maid"
	DefaultRunnerTimeoutSec = 10
	DefaultWorkers          = 4
)

// Config is the resolved server configuration.
type Config struct {
	Project Project
	Source  Source
	Runner  Runner
	Workers int
}

// Project identifies the workspace being served.
type Project struct {
	Root string
	Name string
}

// Source controls where Python files are searched for.
type Source struct {
	Dirs    []string
	Exclude []string
}

// Runner configures the maid CLI adapter.
type Runner struct {
	Binary     string
	TimeoutSec int
}

// Default returns the configuration used when no config file is present.
func Default(projectRoot string) *Config {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	return &Config{
		Project: Project{Root: abs},
		Runner: Runner{
			Binary:     DefaultRunnerBinary,
			TimeoutSec: DefaultRunnerTimeoutSec,
		},
		Workers: DefaultWorkers,
	}
}

// RunnerTimeout converts the configured timeout to a duration.
func (c *Config) RunnerTimeout() time.Duration {
	return time.Duration(c.Runner.TimeoutSec) * time.Second
}

// ProjectContext builds the search context from the configuration.
func (c *Config) ProjectContext() types.ProjectContext {
	return types.NewProjectContext(c.Project.Root, c.Source.Dirs, c.Source.Exclude)
}
