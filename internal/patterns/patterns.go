// Package patterns holds the named shapes used to seed grids and to mutate
// them while a simulation runs.
package patterns

import (
	"errors"
	"fmt"
	"sort"

	"mutant-life/internal/core"
)

// ErrUnknownPattern reports a pattern or seed name missing from the catalog.
var ErrUnknownPattern = errors.New("unknown pattern")

// Offset is a cell position relative to a pattern anchor.
type Offset struct {
	DX, DY int
}

// Pattern is an immutable named set of live cells.
type Pattern struct {
	Name  string
	Cells []Offset
}

var catalog = map[string]Pattern{
	"block": {Name: "block", Cells: []Offset{
		{0, 0}, {1, 0}, {0, 1}, {1, 1},
	}},
	"blinker": {Name: "blinker", Cells: []Offset{
		{0, 0}, {1, 0}, {2, 0},
	}},
	"toad": {Name: "toad", Cells: []Offset{
		{0, 0}, {1, 0}, {2, 0}, {-1, 1}, {0, 1}, {1, 1},
	}},
	"beacon": {Name: "beacon", Cells: []Offset{
		{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 2}, {3, 2}, {2, 3}, {3, 3},
	}},
	"glider": {Name: "glider", Cells: []Offset{
		{0, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1},
	}},
	"lwss": {Name: "lwss", Cells: []Offset{
		{0, 0}, {3, 0}, {4, 1}, {0, 2}, {4, 2}, {1, 3}, {2, 3}, {3, 3}, {4, 3},
	}},
	"figure8": {Name: "figure8", Cells: []Offset{
		{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1},
	}},
	"clock": {Name: "clock", Cells: []Offset{
		{-1, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {1, 1},
	}},
}

// mutationOrder fixes the index used when a mutation picks a pattern at random.
var mutationOrder = []string{"block", "blinker", "toad", "beacon", "glider", "figure8", "clock", "lwss"}

// Lookup returns the catalog entry for name.
func Lookup(name string) (Pattern, bool) {
	p, ok := catalog[name]
	return p, ok
}

// Names lists the catalog in sorted order.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MutationPatterns returns the patterns a stable mutation chooses from, in
// selection order.
func MutationPatterns() []string {
	out := make([]string, len(mutationOrder))
	copy(out, mutationOrder)
	return out
}

// RandomMutation picks one mutation pattern uniformly.
func RandomMutation(rng *core.RNG) string {
	return mutationOrder[rng.IntN(len(mutationOrder))]
}

// Stamp sets the cells of the named pattern alive around (anchorX, anchorY),
// mapping each target through the grid's edge policy. All targets are
// normalized before any write; if one falls off a bounded grid nothing is
// written. Stamping never clears cells.
func Stamp(g *core.Grid, anchorX, anchorY int, name string) (bool, error) {
	p, ok := catalog[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
	return stampCells(g, anchorX, anchorY, p.Cells), nil
}

func stampCells(g *core.Grid, anchorX, anchorY int, cells []Offset) bool {
	targets := make([][2]int, 0, len(cells))
	for _, c := range cells {
		x, y, ok := g.Normalize(anchorX+c.DX, anchorY+c.DY)
		if !ok {
			return false
		}
		targets = append(targets, [2]int{x, y})
	}
	for _, t := range targets {
		g.Set(t[0], t[1], true)
	}
	return true
}

// place writes cells only when every one of them lies inside the grid without
// wrapping, regardless of edge policy.
func place(g *core.Grid, anchorX, anchorY int, cells []Offset) bool {
	for _, c := range cells {
		if !g.Contains(anchorX+c.DX, anchorY+c.DY) {
			return false
		}
	}
	for _, c := range cells {
		g.Set(anchorX+c.DX, anchorY+c.DY, true)
	}
	return true
}
