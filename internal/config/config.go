// Package config loads mutant-life settings from a YAML file and command-line
// flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"mutant-life/internal/core"
	"mutant-life/internal/sims/life"
)

// Config holds every user-tunable setting.
type Config struct {
	Width          int     `yaml:"width"`
	Height         int     `yaml:"height"`
	IntervalMs     float64 `yaml:"interval_ms"`
	MutationChance float64 `yaml:"mutation_chance"`
	MutationType   string  `yaml:"mutation_type"`
	EdgeLooping    bool    `yaml:"edge_looping"`
	Seed           string  `yaml:"seed"`
	RNGSeed        int64   `yaml:"rng_seed"`

	Room      string `yaml:"room"`
	RelayURL  string `yaml:"relay_url"`
	Addr      string `yaml:"addr"`
	ClientDir string `yaml:"client_dir"`

	Scale int `yaml:"scale"`
	TPS   int `yaml:"tps"`
}

// Default returns the built-in settings.
func Default() Config {
	engine := life.DefaultConfig()
	return Config{
		Width:          engine.Width,
		Height:         engine.Height,
		IntervalMs:     engine.UpdateIntervalMs,
		MutationChance: engine.MutationChancePercent,
		MutationType:   string(engine.MutationKind),
		EdgeLooping:    engine.EdgePolicy.Looping(),
		Seed:           "stable",
		RNGSeed:        1,
		Room:           "game-of-life-room",
		Addr:           ":3000",
		Scale:          10,
		TPS:            60,
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Engine converts the simulation settings into an engine configuration.
func (c Config) Engine() (life.Config, error) {
	kind, err := life.ParseMutationKind(c.MutationType)
	if err != nil {
		return life.Config{}, err
	}
	cfg := life.Config{
		Width:                 c.Width,
		Height:                c.Height,
		UpdateIntervalMs:      c.IntervalMs,
		MutationChancePercent: c.MutationChance,
		MutationKind:          kind,
		EdgePolicy:            core.EdgePolicyFromLooping(c.EdgeLooping),
	}
	if err := cfg.Validate(); err != nil {
		return life.Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := c.Engine(); err != nil {
		return err
	}
	if c.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %d", c.Scale)
	}
	if c.TPS <= 0 {
		return fmt.Errorf("tps must be positive, got %d", c.TPS)
	}
	return nil
}
