package patterns

import (
	"fmt"

	"mutant-life/internal/core"
)

// DefaultSeed is the layout used when none is requested.
const DefaultSeed = "stable"

const randomDensity = 0.3

// gliderSeed is the centered glider used for initial population. It differs
// from the mutation glider by being anchored one row higher.
var gliderSeed = []Offset{{0, -1}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}

var oscillatorSeed = []Offset{{-1, 0}, {0, 0}, {1, 0}}

func init() {
	core.RegisterSeed("empty", func(*core.Grid, *core.RNG) {})
	core.RegisterSeed("random", seedRandom)
	core.RegisterSeed("glider", func(g *core.Grid, _ *core.RNG) {
		cx, cy := g.W/2, g.H/2
		if cx >= 2 && cy >= 2 {
			place(g, cx, cy, gliderSeed)
		}
	})
	core.RegisterSeed("oscillator", func(g *core.Grid, _ *core.RNG) {
		centered(g, oscillatorSeed)
	})
	core.RegisterSeed("stable", seedStable)
	for _, name := range []string{"toad", "beacon", "figure8"} {
		cells := catalog[name].Cells
		core.RegisterSeed(name, func(g *core.Grid, _ *core.RNG) {
			centered(g, cells)
		})
	}
}

// Seed clears g and applies the named seed layout.
func Seed(g *core.Grid, name string, rng *core.RNG) error {
	seeder, ok := core.Seeds()[name]
	if !ok {
		return fmt.Errorf("%w: seed %q", ErrUnknownPattern, name)
	}
	g.Clear()
	seeder(g, rng)
	return nil
}

func seedRandom(g *core.Grid, rng *core.RNG) {
	cells := g.Cells()
	for i := range cells {
		if rng.Chance(randomDensity) {
			cells[i] = 1
		}
	}
}

func centered(g *core.Grid, cells []Offset) {
	cx, cy := g.W/2, g.H/2
	if cx >= 1 && cy >= 1 {
		place(g, cx, cy, cells)
	}
}

// seedStable lays out a block, blinker, toad and beacon at increasing offsets
// from the center. A shape whose anchor sits too close to an edge is skipped.
func seedStable(g *core.Grid, _ *core.RNG) {
	cx, cy := g.W/2, g.H/2
	shapes := []struct {
		name       string
		dx, dy     int
		minX, minY int
	}{
		{name: "block", dx: 0, dy: 0, minX: 1, minY: 1},
		{name: "blinker", dx: 5, dy: 0, minX: 5, minY: 1},
		{name: "toad", dx: 10, dy: 5, minX: 10, minY: 5},
		{name: "beacon", dx: 15, dy: 10, minX: 15, minY: 10},
	}
	for _, s := range shapes {
		if cx < s.minX || cy < s.minY {
			continue
		}
		place(g, cx+s.dx, cy+s.dy, catalog[s.name].Cells)
	}
}
