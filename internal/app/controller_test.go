package app

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutant-life/internal/core"
	"mutant-life/internal/session"
	"mutant-life/internal/sims/life"
)

func newController(t *testing.T) (*Controller, *session.Loop) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	cfg := life.DefaultConfig()
	cfg.Width, cfg.Height = 20, 20
	loop, err := session.New(session.Config{Engine: cfg, Seed: "empty", RNG: core.NewRNG(3), Logger: logger})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})
	return NewController(ctx, loop, "glider", logger), loop
}

func TestControllerTogglePauseAndStep(t *testing.T) {
	ctrl, loop := newController(t)

	require.NoError(t, ctrl.TogglePause())
	assert.True(t, loop.Latest().Running)
	require.NoError(t, ctrl.TogglePause())
	assert.False(t, loop.Latest().Running)

	before := loop.Latest().Generation
	require.NoError(t, ctrl.StepOnce())
	assert.Equal(t, before+1, loop.Latest().Generation)
}

func TestControllerSeeds(t *testing.T) {
	ctrl, loop := newController(t)

	require.NoError(t, ctrl.Reseed())
	assert.Equal(t, 5, loop.Latest().Living, "configured glider seed")

	require.NoError(t, ctrl.SeedPattern(4))
	assert.Equal(t, 3, loop.Latest().Living, "key 4 is the oscillator")
	assert.Zero(t, loop.Latest().Generation)

	require.NoError(t, ctrl.SeedPattern(1))
	assert.Zero(t, loop.Latest().Living)

	assert.Error(t, ctrl.SeedPattern(0))
	assert.Error(t, ctrl.SeedPattern(len(SeedKeys)+1))
}

func TestControllerAdjustInterval(t *testing.T) {
	ctrl, loop := newController(t)

	require.NoError(t, ctrl.AdjustInterval(1))
	assert.Equal(t, 110.0, loop.Latest().Config.UpdateIntervalMs)
	require.NoError(t, ctrl.AdjustInterval(-1))
	require.NoError(t, ctrl.AdjustInterval(-1))
	assert.Equal(t, 90.0, loop.Latest().Config.UpdateIntervalMs)

	require.True(t, ctrl.SetFloatParameter("interval_ms", 2000))
	require.NoError(t, ctrl.AdjustInterval(1))
	assert.Equal(t, 2000.0, loop.Latest().Config.UpdateIntervalMs, "clamped at the maximum")
}

func TestControllerAdjustMutation(t *testing.T) {
	ctrl, loop := newController(t)

	require.NoError(t, ctrl.AdjustMutation(1))
	assert.Equal(t, 0.0001, loop.Latest().Config.MutationChancePercent)
	require.NoError(t, ctrl.AdjustMutation(-1))
	assert.Zero(t, loop.Latest().Config.MutationChancePercent)
}

func TestControllerTogglesKindAndEdges(t *testing.T) {
	ctrl, loop := newController(t)

	require.NoError(t, ctrl.CycleMutationKind())
	assert.Equal(t, life.MutationStablePattern, loop.Latest().Config.MutationKind)
	require.NoError(t, ctrl.CycleMutationKind())
	assert.Equal(t, life.MutationSingleCell, loop.Latest().Config.MutationKind)

	require.NoError(t, ctrl.ToggleEdges())
	snap := loop.Latest()
	assert.Equal(t, core.EdgeBounded, snap.Config.EdgePolicy)
	assert.Equal(t, core.EdgeBounded, snap.Grid.Edge)
}

func TestControllerSetFloatParameterRejects(t *testing.T) {
	ctrl, loop := newController(t)

	assert.False(t, ctrl.SetFloatParameter("generation", 4))
	assert.False(t, ctrl.SetFloatParameter("interval_ms", -5))
	assert.False(t, ctrl.SetFloatParameter("mutation_chance", 100))
	assert.Equal(t, life.DefaultConfig().UpdateIntervalMs, loop.Latest().Config.UpdateIntervalMs)
}
