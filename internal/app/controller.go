package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"mutant-life/internal/core"
	"mutant-life/internal/sims/life"
	"mutant-life/internal/ui"
)

// SeedKeys are the layouts bound to the number keys 1 through 8.
var SeedKeys = []string{"empty", "random", "glider", "oscillator", "stable", "toad", "beacon", "figure8"}

// Session is the part of the session loop driven by local controls.
type Session interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Step(ctx context.Context) (life.Snapshot, error)
	Reseed(ctx context.Context, name string) error
	Apply(ctx context.Context, cfg life.Config, seed string) (bool, error)
	Latest() life.Snapshot
}

// Controller turns key presses and panel clicks into session operations.
type Controller struct {
	ctx  context.Context
	sess Session
	seed string
	log  logrus.FieldLogger
}

// NewController binds local controls to sess. seed is the layout used by
// Reseed.
func NewController(ctx context.Context, sess Session, seed string, logger logrus.FieldLogger) *Controller {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Controller{ctx: ctx, sess: sess, seed: seed, log: logger.WithField("component", "controls")}
}

// TogglePause starts a stopped session and stops a running one.
func (c *Controller) TogglePause() error {
	if c.sess.Latest().Running {
		return c.sess.Stop(c.ctx)
	}
	return c.sess.Start(c.ctx)
}

// StepOnce advances a single generation.
func (c *Controller) StepOnce() error {
	_, err := c.sess.Step(c.ctx)
	return err
}

// Reseed restores the configured layout.
func (c *Controller) Reseed() error { return c.sess.Reseed(c.ctx, c.seed) }

// Randomize fills the grid randomly.
func (c *Controller) Randomize() error { return c.sess.Reseed(c.ctx, "random") }

// SeedPattern applies the layout bound to number key n (1-based).
func (c *Controller) SeedPattern(n int) error {
	if n < 1 || n > len(SeedKeys) {
		return fmt.Errorf("no seed bound to key %d", n)
	}
	return c.sess.Reseed(c.ctx, SeedKeys[n-1])
}

// AdjustInterval steps the update interval.
func (c *Controller) AdjustInterval(dir int) error {
	return c.adjust("interval_ms", dir)
}

// AdjustMutation steps the mutation chance on its logarithmic scale.
func (c *Controller) AdjustMutation(dir int) error {
	return c.adjust("mutation_chance", dir)
}

// CycleMutationKind switches between single-cell and pattern mutation.
func (c *Controller) CycleMutationKind() error {
	cfg := c.sess.Latest().Config
	if cfg.MutationKind == life.MutationStablePattern {
		cfg.MutationKind = life.MutationSingleCell
	} else {
		cfg.MutationKind = life.MutationStablePattern
	}
	return c.apply(cfg)
}

// ToggleEdges switches between looping and bounded edges.
func (c *Controller) ToggleEdges() error {
	cfg := c.sess.Latest().Config
	cfg.EdgePolicy = core.EdgePolicyFromLooping(!cfg.EdgePolicy.Looping())
	return c.apply(cfg)
}

// SetFloatParameter implements core.FloatParameterSetter for panel buttons.
func (c *Controller) SetFloatParameter(key string, value float64) bool {
	cfg := c.sess.Latest().Config
	switch key {
	case "interval_ms":
		cfg.UpdateIntervalMs = value
	case "mutation_chance":
		cfg.MutationChancePercent = value
	default:
		return false
	}
	if err := c.apply(cfg); err != nil {
		c.log.WithError(err).WithField("key", key).Warn("setting rejected")
		return false
	}
	return true
}

func (c *Controller) adjust(key string, dir int) error {
	snap := c.sess.Latest()
	param, ok := snap.Parameters().Lookup(key)
	if !ok {
		return fmt.Errorf("unknown parameter %q", key)
	}
	for _, ctrl := range snap.ParameterControls() {
		if ctrl.Key != key {
			continue
		}
		current, err := strconv.ParseFloat(param.Value, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", key, err)
		}
		next := ui.StepValue(ctrl, current, dir)
		if next == current {
			return nil
		}
		if !c.SetFloatParameter(key, next) {
			return fmt.Errorf("%s rejected value %v", key, next)
		}
		return nil
	}
	return fmt.Errorf("parameter %q is not adjustable", key)
}

func (c *Controller) apply(cfg life.Config) error {
	_, err := c.sess.Apply(c.ctx, cfg, "")
	return err
}
