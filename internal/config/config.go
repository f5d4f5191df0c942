// Package config loads exploration tuning from an optional YAML file,
// falling back to documented defaults: a defaults-then-override loader
// returning a typed struct plus a validation error.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExplorationConfig tunes the state-graph explorer.
type ExplorationConfig struct {
	// MaxStates caps the number of distinct states recorded (default 30).
	MaxStates int `yaml:"max_states"`
	// MaxOptionsPerSelect caps per-control sampling during the primary BFS
	// and the select-sampling sweep (default 5).
	MaxOptionsPerSelect int `yaml:"max_options_per_select"`
	// RestoreToggles controls whether TOGGLE gate actions of the primary BFS
	// are re-clicked to OFF (default true). The toggle-exhaustion sweep
	// restores each toggle OFF whatever this is set to.
	RestoreToggles bool `yaml:"restore_toggles"`
	// VisibilityWaitMs is the per-element visibility wait ceiling (default 2000ms).
	VisibilityWaitMs int `yaml:"visibility_wait_ms"`
	// CardWaitMs is the service-card wait ceiling (default 8000ms).
	CardWaitMs int `yaml:"card_wait_ms"`
	// CardRenderRetries is the aggregate card-rendering retry count (default 3, 24s aggregate).
	CardRenderRetries int `yaml:"card_render_retries"`
}

// Defaults returns the documented default tuning values.
func Defaults() ExplorationConfig {
	return ExplorationConfig{
		MaxStates:           30,
		MaxOptionsPerSelect: 5,
		RestoreToggles:      true,
		VisibilityWaitMs:    2000,
		CardWaitMs:          8000,
		CardRenderRetries:   3,
	}
}

// Load reads path (if it exists) and overlays its fields onto Defaults().
// A missing file is not an error — the defaults are returned unchanged.
func Load(path string) (ExplorationConfig, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var override ExplorationConfig
	if err := yaml.Unmarshal(data, &override); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	applyOverride(&cfg, override, data)
	return cfg, cfg.Validate()
}

// applyOverride merges onto cfg every override field whose key is present
// in the YAML, explicit zero and false values included. Because YAML
// unmarshal can't distinguish "explicitly zero" from "absent" for plain
// ints/bools, it re-parses into a map to detect which keys were present.
func applyOverride(cfg *ExplorationConfig, override ExplorationConfig, raw []byte) {
	var present map[string]any
	_ = yaml.Unmarshal(raw, &present)

	if _, ok := present["max_states"]; ok {
		cfg.MaxStates = override.MaxStates
	}
	if _, ok := present["max_options_per_select"]; ok {
		cfg.MaxOptionsPerSelect = override.MaxOptionsPerSelect
	}
	if _, ok := present["restore_toggles"]; ok {
		cfg.RestoreToggles = override.RestoreToggles
	}
	if _, ok := present["visibility_wait_ms"]; ok {
		cfg.VisibilityWaitMs = override.VisibilityWaitMs
	}
	if _, ok := present["card_wait_ms"]; ok {
		cfg.CardWaitMs = override.CardWaitMs
	}
	if _, ok := present["card_render_retries"]; ok {
		cfg.CardRenderRetries = override.CardRenderRetries
	}
}

// Validate rejects a non-positive max_states or max_options_per_select; the
// other fields are not checked.
func (c ExplorationConfig) Validate() error {
	if c.MaxStates <= 0 {
		return fmt.Errorf("config: max_states must be positive, got %d", c.MaxStates)
	}
	if c.MaxOptionsPerSelect <= 0 {
		return fmt.Errorf("config: max_options_per_select must be positive, got %d", c.MaxOptionsPerSelect)
	}
	return nil
}
