package csg

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// DefaultPassesFactor multiplies the node count of a subtree to give the
// pass budget of Tree.Rewrite.
const DefaultPassesFactor = 2

// DefaultMaxNodes bounds the size of a tree under rewriting. Rules that
// duplicate operands can grow a tree exponentially within its pass budget.
const DefaultMaxNodes = 1 << 16

// Config selects the rewrite rules and pass budget of a Tree. It is usually
// decoded from a TOML file:
//
//	passes_factor = 3
//	max_nodes = 100000
//	preset = "sum-of-products"
//
// or with an explicit rule list, which overrides the preset:
//
//	rules = ["difference-of-union", "commutative-order"]
type Config struct {
	PassesFactor int      `toml:"passes_factor"`
	MaxNodes     int      `toml:"max_nodes"` // 0 means DefaultMaxNodes
	Preset       string   `toml:"preset"`
	Rules        []string `toml:"rules"`
}

// DefaultConfig returns the equivalences preset with the default budget.
func DefaultConfig() Config {
	return Config{
		PassesFactor: DefaultPassesFactor,
		MaxNodes:     DefaultMaxNodes,
		Preset:       PresetEquivalences,
	}
}

// LoadConfig decodes a TOML config file. Fields absent from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a TOML document.
func ParseConfig(data string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("parse config: unknown key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the budget is positive and that every named rule or
// preset exists.
func (c Config) Validate() error {
	if c.PassesFactor < 1 {
		return fmt.Errorf("passes_factor must be at least 1, got %d", c.PassesFactor)
	}
	if c.MaxNodes < 0 {
		return fmt.Errorf("max_nodes must not be negative, got %d", c.MaxNodes)
	}
	_, err := c.RuleSet()
	return err
}

// RuleSet resolves the configured rules in application order.
func (c Config) RuleSet() ([]Rule, error) {
	if len(c.Rules) > 0 {
		return lookupRules(c.Rules)
	}
	preset := c.Preset
	if preset == "" {
		preset = PresetEquivalences
	}
	return Preset(preset)
}
