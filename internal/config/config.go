// Package config holds the engine's run configuration, adapted from the
// teacher's effects.EffEnv/loadEffEnv pattern: defaults are baked in,
// overridden first by AHORN_* environment variables and then by CLI flags.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the run configuration shared by the explorer, the executor,
// and the shadow engine.
type Config struct {
	MaxCycles     int           // bound on cyclic re-entry (spec.md §3.6 lifecycle)
	SolverTimeout time.Duration // treated as fatal (SolverUnknown) on expiry
	Seed          int64         // seeds internal/randsrc; 0 means OS entropy
	ShadowMode    string        // "none" | "old" | "new" | "both" (spec.md §4.6)
	OutDir        string        // test-suite output directory
}

// Default returns the baseline configuration before environment or flag
// overrides are applied.
func Default() Config {
	return Config{
		MaxCycles:     10,
		SolverTimeout: 10 * time.Second,
		Seed:          0,
		ShadowMode:    "none",
		OutDir:        "testsuite",
	}
}

// FromEnv starts from Default and overrides every field present in the
// process environment under the AHORN_ prefix.
func FromEnv() Config {
	c := Default()
	if v := os.Getenv("AHORN_MAX_CYCLES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxCycles = n
		}
	}
	if v := os.Getenv("AHORN_SOLVER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.SolverTimeout = d
		}
	}
	if v := os.Getenv("AHORN_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = n
		}
	}
	if v := os.Getenv("AHORN_SHADOW_MODE"); v != "" {
		c.ShadowMode = v
	}
	if v := os.Getenv("AHORN_OUT_DIR"); v != "" {
		c.OutDir = v
	}
	return c
}
