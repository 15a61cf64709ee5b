package ui

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutant-life/internal/core"
	"mutant-life/internal/sims/life"
)

func mutationControl(t *testing.T) core.ParameterControl {
	t.Helper()
	controls := life.Snapshot{Config: life.DefaultConfig()}.ParameterControls()
	for _, c := range controls {
		if c.Key == "mutation_chance" {
			return c
		}
	}
	require.FailNow(t, "mutation control missing")
	return core.ParameterControl{}
}

func TestStepValueLinear(t *testing.T) {
	ctrl := core.ParameterControl{Step: 10, Min: 10, Max: 50, HasMin: true, HasMax: true}
	assert.Equal(t, 110.0, StepValue(core.ParameterControl{Step: 10}, 100, 1))
	assert.Equal(t, 10.0, StepValue(ctrl, 15, -1))
	assert.Equal(t, 50.0, StepValue(ctrl, 50, 1))
	assert.Equal(t, 30.0, StepValue(ctrl, 30, 0))
}

func TestStepValueLogScaleCoversSliderRange(t *testing.T) {
	ctrl := mutationControl(t)

	v := StepValue(ctrl, 0, 1)
	assert.Equal(t, 0.0001, v, "first step up from off lands on the minimum")

	for i := 0; i < int(ctrl.Step); i++ {
		v = StepValue(ctrl, v, 1)
	}
	assert.InDelta(t, 0.001, v, 1e-12, "one decade per Step increments")

	for i := 0; i < 100; i++ {
		v = StepValue(ctrl, v, 1)
	}
	assert.Equal(t, 10.0, v)

	assert.Equal(t, 0.0, StepValue(ctrl, 0.0001, -1), "below the minimum turns mutation off")
	assert.Equal(t, 0.0, StepValue(ctrl, 0, -1))
	assert.InDelta(t, 10/math.Pow(10, 0.25), StepValue(ctrl, 10, -1), 1e-9)
}

func TestFormatValue(t *testing.T) {
	ctrl := mutationControl(t)
	assert.Equal(t, "off", FormatValue(ctrl, 0))
	assert.Equal(t, "0.0001", FormatValue(ctrl, 0.0001))
	assert.Equal(t, "100", FormatValue(core.ParameterControl{Step: 10, Type: core.ParamTypeFloat}, 100))
	assert.Equal(t, "7", FormatValue(core.ParameterControl{Type: core.ParamTypeInt}, 6.6))
}

func TestStatusLines(t *testing.T) {
	cfg := life.DefaultConfig()
	cfg.EdgePolicy = core.EdgeBounded
	cfg.MutationKind = life.MutationStablePattern
	lines := StatusLines(life.Snapshot{Generation: 12, Living: 30, Running: true, Config: cfg}, 2)
	assert.Equal(t, []string{
		"Generation 12",
		"Living 30",
		"Viewers 3",
		"Grid 50x50 bounded",
		"Mutation Stable State",
		"State running",
	}, lines)
}

func TestDiffRGBAMarksBirthsAndDeaths(t *testing.T) {
	prev, err := core.GridFromRows([][]bool{{true, false, true}}, core.EdgeLooping)
	require.NoError(t, err)
	cur, err := core.GridFromRows([][]bool{{false, true, true}}, core.EdgeLooping)
	require.NoError(t, err)

	buf := make([]byte, 12)
	diffRGBA(buf, prev, cur)
	assert.Equal(t, []byte{210, 60, 60, 160}, buf[0:4], "death")
	assert.Equal(t, []byte{60, 200, 90, 160}, buf[4:8], "birth")
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[8:12], "unchanged")

	other, err := core.NewGrid(2, 2, core.EdgeLooping)
	require.NoError(t, err)
	diffRGBA(buf, other, cur)
	assert.Equal(t, make([]byte, 12), buf)
}
