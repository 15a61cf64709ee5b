package life

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"mutant-life/internal/core"
)

var (
	// ErrInvalidInterval reports a non-positive or non-finite update interval.
	ErrInvalidInterval = errors.New("invalid update interval")
	// ErrInvalidMutation reports a mutation chance outside [0,100) or an
	// unknown mutation kind.
	ErrInvalidMutation = errors.New("invalid mutation setting")
	// ErrInvalidState reports a state snapshot that cannot be adopted.
	ErrInvalidState = errors.New("invalid simulation state")
)

// MutationKind selects what a mutation does to the cell it hits.
type MutationKind string

const (
	// MutationSingleCell toggles the hit cell.
	MutationSingleCell MutationKind = "single"
	// MutationStablePattern stamps a random catalog pattern at the hit cell.
	MutationStablePattern MutationKind = "stable"
)

// ParseMutationKind accepts the wire names; an empty name means single.
func ParseMutationKind(s string) (MutationKind, error) {
	switch MutationKind(s) {
	case "", MutationSingleCell:
		return MutationSingleCell, nil
	case MutationStablePattern:
		return MutationStablePattern, nil
	default:
		return "", fmt.Errorf("%w: mutation type %q", ErrInvalidMutation, s)
	}
}

// Label returns the display name of the mutation kind.
func (k MutationKind) Label() string {
	if k == MutationStablePattern {
		return "Stable State"
	}
	return "Single Cell"
}

// Config controls the engine dimensions, cadence and mutation behavior.
type Config struct {
	Width  int
	Height int

	UpdateIntervalMs      float64
	MutationChancePercent float64
	MutationKind          MutationKind
	EdgePolicy            core.EdgePolicy
}

// DefaultConfig returns the standard configuration.
func DefaultConfig() Config {
	return Config{
		Width:                 50,
		Height:                50,
		UpdateIntervalMs:      100,
		MutationChancePercent: 0,
		MutationKind:          MutationSingleCell,
		EdgePolicy:            core.EdgeLooping,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", core.ErrInvalidDimension, c.Width, c.Height)
	}
	if !(c.UpdateIntervalMs > 0) || math.IsInf(c.UpdateIntervalMs, 0) {
		return fmt.Errorf("%w: %vms", ErrInvalidInterval, c.UpdateIntervalMs)
	}
	if !(c.MutationChancePercent >= 0 && c.MutationChancePercent < 100) {
		return fmt.Errorf("%w: chance %v%%", ErrInvalidMutation, c.MutationChancePercent)
	}
	if _, err := ParseMutationKind(string(c.MutationKind)); err != nil {
		return err
	}
	return nil
}

// Interval converts the update interval to a duration, never below 1ms.
func (c Config) Interval() time.Duration {
	d := time.Duration(c.UpdateIntervalMs * float64(time.Millisecond))
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}

// SameSize reports whether both configs describe the same grid dimensions.
func (c Config) SameSize(o Config) bool {
	return c.Width == o.Width && c.Height == o.Height
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	c := DefaultConfig()
	if cfg == nil {
		return c
	}
	if v, ok := cfg["w"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Width = parsed
		}
	}
	if v, ok := cfg["h"]; ok {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			c.Height = parsed
		}
	}
	if v, ok := cfg["interval_ms"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			c.UpdateIntervalMs = parsed
		}
	}
	if v, ok := cfg["mutation_chance"]; ok {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed >= 0 && parsed < 100 {
			c.MutationChancePercent = parsed
		}
	}
	if v, ok := cfg["mutation_type"]; ok {
		if kind, err := ParseMutationKind(v); err == nil {
			c.MutationKind = kind
		}
	}
	if v, ok := cfg["edge_looping"]; ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.EdgePolicy = core.EdgePolicyFromLooping(parsed)
		}
	}
	return c
}
