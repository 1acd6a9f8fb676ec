// Package config holds esprit's engine-tuning configuration: a single
// Config struct, YAML load/save, and environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all engine tuning configuration.
type Config struct {
	GC      GCConfig      `yaml:"gc"`
	Parser  ParserConfig  `yaml:"parser"`
	VM      VMConfig      `yaml:"vm"`
	Logging LoggingConfig `yaml:"logging"`
}

// GCConfig tunes the mark-and-sweep collector (internal/heap).
type GCConfig struct {
	// InitialHeapObjects is the number of live cells that may accumulate
	// before the first collection is considered.
	InitialHeapObjects int `yaml:"initial_heap_objects"`
	// GCTriggerRatio is the growth factor of live objects since the last
	// collection that triggers the next one.
	GCTriggerRatio float64 `yaml:"gc_trigger_ratio"`
}

// ParserConfig tunes the recursive-descent parser (internal/parser).
type ParserConfig struct {
	// MaxNestingDepth is checked by Validate (it must be > 0), but the
	// parser does not read it: recursion depth is not bounded.
	MaxNestingDepth int `yaml:"max_nesting_depth"`
	// AllowHashbang is not read by the lexer, which strips a leading #!
	// line whatever its value.
	AllowHashbang bool `yaml:"allow_hashbang"`
}

// VMConfig tunes call-frame and interrupt behavior (internal/vm).
type VMConfig struct {
	MaxCallStackDepth int  `yaml:"max_call_stack_depth"`
	InterruptEnabled  bool `yaml:"interrupt_enabled"`
}

// LoggingConfig gates debug-level engine logging.
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		GC: GCConfig{
			InitialHeapObjects: 4096,
			GCTriggerRatio:     2.0,
		},
		Parser: ParserConfig{
			MaxNestingDepth: 1024,
			AllowHashbang:   true,
		},
		VM: VMConfig{
			MaxCallStackDepth: 8192,
			InterruptEnabled:  false,
		},
		Logging: LoggingConfig{
			Debug: os.Getenv("ESPRIT_DEBUG") != "",
		},
	}
}

// Load reads YAML configuration from path, falling back to defaults if
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes c as YAML to path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ESPRIT_GC_TRIGGER_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.GC.GCTriggerRatio = f
		}
	}
	if v := os.Getenv("ESPRIT_MAX_STACK_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.VM.MaxCallStackDepth = n
		}
	}
	if os.Getenv("ESPRIT_DEBUG") != "" {
		c.Logging.Debug = true
	}
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	if c.GC.GCTriggerRatio <= 1.0 {
		return fmt.Errorf("gc.gc_trigger_ratio must be > 1.0, got %f", c.GC.GCTriggerRatio)
	}
	if c.VM.MaxCallStackDepth <= 0 {
		return fmt.Errorf("vm.max_call_stack_depth must be > 0, got %d", c.VM.MaxCallStackDepth)
	}
	if c.Parser.MaxNestingDepth <= 0 {
		return fmt.Errorf("parser.max_nesting_depth must be > 0, got %d", c.Parser.MaxNestingDepth)
	}
	return nil
}
