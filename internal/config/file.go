package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors Config's fields as YAML, grounded on the teacher's
// eval_harness.BenchmarkSpec load-from-YAML pattern: a plain struct with
// yaml tags, read with os.ReadFile + yaml.Unmarshal.
type fileConfig struct {
	MaxCycles     int    `yaml:"max_cycles"`
	SolverTimeout string `yaml:"solver_timeout"`
	Seed          int64  `yaml:"seed"`
	ShadowMode    string `yaml:"shadow_mode"`
	OutDir        string `yaml:"out_dir"`
}

// LoadFile overrides c with whatever fields path sets; fields absent from
// the file are left untouched, so callers typically start from
// config.FromEnv() and apply LoadFile on top for a project-local
// ahorn.yaml.
func LoadFile(c Config, path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return c, fmt.Errorf("parse config %s: %w", path, err)
	}
	if fc.MaxCycles != 0 {
		c.MaxCycles = fc.MaxCycles
	}
	if fc.SolverTimeout != "" {
		d, err := time.ParseDuration(fc.SolverTimeout)
		if err != nil {
			return c, fmt.Errorf("config %s: solver_timeout: %w", path, err)
		}
		c.SolverTimeout = d
	}
	if fc.Seed != 0 {
		c.Seed = fc.Seed
	}
	if fc.ShadowMode != "" {
		c.ShadowMode = fc.ShadowMode
	}
	if fc.OutDir != "" {
		c.OutDir = fc.OutDir
	}
	return c, nil
}
