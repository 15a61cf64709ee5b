package patterns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mutant-life/internal/core"
)

func newGrid(t *testing.T, w, h int, edge core.EdgePolicy) *core.Grid {
	t.Helper()
	g, err := core.NewGrid(w, h, edge)
	require.NoError(t, err)
	return g
}

func TestCatalogOffsetsAreExact(t *testing.T) {
	expected := map[string][]Offset{
		"block":   {{0, 0}, {1, 0}, {0, 1}, {1, 1}},
		"blinker": {{0, 0}, {1, 0}, {2, 0}},
		"toad":    {{0, 0}, {1, 0}, {2, 0}, {-1, 1}, {0, 1}, {1, 1}},
		"beacon":  {{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 2}, {3, 2}, {2, 3}, {3, 3}},
		"glider":  {{0, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}},
		"lwss":    {{0, 0}, {3, 0}, {4, 1}, {0, 2}, {4, 2}, {1, 3}, {2, 3}, {3, 3}, {4, 3}},
		"figure8": {{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}},
		"clock":   {{-1, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {1, 1}},
	}
	assert.Len(t, Names(), len(expected))
	for name, cells := range expected {
		p, ok := Lookup(name)
		require.True(t, ok, "missing %s", name)
		assert.Equal(t, cells, p.Cells, "offsets for %s", name)
	}
	assert.Equal(t,
		[]string{"block", "blinker", "toad", "beacon", "glider", "figure8", "clock", "lwss"},
		MutationPatterns())
}

func TestStampWrapsOnLoopingGrid(t *testing.T) {
	g := newGrid(t, 5, 5, core.EdgeLooping)

	ok, err := Stamp(g, 4, 4, "block")
	require.NoError(t, err)
	require.True(t, ok)

	for _, c := range [][2]int{{4, 4}, {0, 4}, {4, 0}, {0, 0}} {
		assert.True(t, g.Get(c[0], c[1]), "expected wrapped cell (%d,%d)", c[0], c[1])
	}
	assert.Equal(t, 4, g.Living())
}

func TestStampOnBoundedGridIsAllOrNothing(t *testing.T) {
	g := newGrid(t, 6, 6, core.EdgeBounded)

	ok, err := Stamp(g, 5, 2, "blinker")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, g.Living(), "partial placement must not write any cell")

	ok, err = Stamp(g, 0, 0, "clock")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, g.Living())

	ok, err = Stamp(g, 1, 1, "clock")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 6, g.Living())
}

func TestStampNeverClearsCells(t *testing.T) {
	g := newGrid(t, 6, 6, core.EdgeLooping)
	for i := range g.Cells() {
		g.Cells()[i] = 1
	}
	ok, err := Stamp(g, 2, 2, "figure8")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 36, g.Living())
}

func TestStampUnknownPattern(t *testing.T) {
	g := newGrid(t, 4, 4, core.EdgeLooping)
	_, err := Stamp(g, 0, 0, "pulsar")
	assert.ErrorIs(t, err, ErrUnknownPattern)
}

func TestStableSeedPlacesAllShapesOnLargeGrid(t *testing.T) {
	g := newGrid(t, 50, 50, core.EdgeLooping)
	require.NoError(t, Seed(g, "stable", core.NewRNG(1)))

	assert.Equal(t, 4+3+6+8, g.Living())
	assert.True(t, g.Get(25, 25), "block anchor")
	assert.True(t, g.Get(32, 25), "blinker end")
	assert.True(t, g.Get(34, 31), "toad lower-left")
	assert.True(t, g.Get(43, 38), "beacon corner")
}

func TestStableSeedSkipsShapesThatDoNotFit(t *testing.T) {
	g := newGrid(t, 16, 4, core.EdgeLooping)
	require.NoError(t, Seed(g, "stable", core.NewRNG(1)))
	assert.Equal(t, 7, g.Living(), "only block and blinker fit a 16x4 grid")

	small := newGrid(t, 1, 1, core.EdgeLooping)
	require.NoError(t, Seed(small, "stable", core.NewRNG(1)))
	assert.Zero(t, small.Living())

	// the beacon's anchor guard passes but its cells would run past the bottom edge
	tall := newGrid(t, 40, 22, core.EdgeBounded)
	require.NoError(t, Seed(tall, "stable", core.NewRNG(1)))
	assert.Equal(t, 4+3+6, tall.Living())
}

func TestGliderAndOscillatorSeeds(t *testing.T) {
	g := newGrid(t, 10, 10, core.EdgeLooping)
	require.NoError(t, Seed(g, "glider", nil))
	for _, c := range [][2]int{{5, 4}, {6, 5}, {4, 6}, {5, 6}, {6, 6}} {
		assert.True(t, g.Get(c[0], c[1]), "glider cell (%d,%d)", c[0], c[1])
	}
	assert.Equal(t, 5, g.Living())

	require.NoError(t, Seed(g, "oscillator", nil))
	assert.Equal(t, 3, g.Living(), "seeding clears the previous layout")
	assert.True(t, g.Get(4, 5))
	assert.True(t, g.Get(6, 5))
}

func TestRandomSeedIsDeterministicPerRNG(t *testing.T) {
	a := newGrid(t, 30, 30, core.EdgeLooping)
	b := newGrid(t, 30, 30, core.EdgeLooping)
	require.NoError(t, Seed(a, "random", core.NewRNG(42)))
	require.NoError(t, Seed(b, "random", core.NewRNG(42)))
	assert.True(t, a.Equal(b))

	living := a.Living()
	assert.Greater(t, living, 180)
	assert.Less(t, living, 360)
}

func TestSeedUnknownName(t *testing.T) {
	g := newGrid(t, 4, 4, core.EdgeLooping)
	g.Set(1, 1, true)
	err := Seed(g, "nope", nil)
	assert.ErrorIs(t, err, ErrUnknownPattern)
	assert.True(t, g.Get(1, 1), "unknown seed leaves the grid untouched")
}

func TestSeedRegistryListsAllLayouts(t *testing.T) {
	names := core.SeedNames()
	for _, want := range []string{"beacon", "empty", "figure8", "glider", "oscillator", "random", "stable", "toad"} {
		assert.Contains(t, names, want)
	}
}
