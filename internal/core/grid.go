package core

import (
	"errors"
	"fmt"
)

// ErrInvalidDimension reports a non-positive grid width or height.
var ErrInvalidDimension = errors.New("invalid grid dimension")

// EdgePolicy controls how coordinates beyond the grid edges are treated.
type EdgePolicy uint8

const (
	// EdgeLooping wraps coordinates around both axes (toroidal grid).
	EdgeLooping EdgePolicy = iota
	// EdgeBounded treats coordinates outside the grid as absent.
	EdgeBounded
)

// EdgePolicyFromLooping maps the wire-level edgeLooping flag to a policy.
func EdgePolicyFromLooping(looping bool) EdgePolicy {
	if looping {
		return EdgeLooping
	}
	return EdgeBounded
}

// Looping reports whether the policy wraps coordinates.
func (p EdgePolicy) Looping() bool { return p == EdgeLooping }

func (p EdgePolicy) String() string {
	switch p {
	case EdgeLooping:
		return "looping"
	case EdgeBounded:
		return "bounded"
	default:
		return fmt.Sprintf("EdgePolicy(%d)", uint8(p))
	}
}

// Grid stores a fixed-size 2D field of live/dead cells in row-major order.
// Live cells hold 1, dead cells 0.
type Grid struct {
	W, H int
	Edge EdgePolicy
	data []uint8
}

// NewGrid allocates an empty grid with the given dimensions and edge policy.
func NewGrid(w, h int, edge EdgePolicy) (*Grid, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, w, h)
	}
	return &Grid{W: w, H: h, Edge: edge, data: make([]uint8, w*h)}, nil
}

// GridFromRows builds a grid from a [y][x] boolean matrix. Every row must have
// the same non-zero length.
func GridFromRows(rows [][]bool, edge EdgePolicy) (*Grid, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidDimension)
	}
	g, err := NewGrid(len(rows[0]), len(rows), edge)
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if len(row) != g.W {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidDimension, y, len(row), g.W)
		}
		for x, alive := range row {
			if alive {
				g.data[g.Index(x, y)] = 1
			}
		}
	}
	return g, nil
}

// Size returns the grid dimensions.
func (g *Grid) Size() Size { return Size{W: g.W, H: g.H} }

// Cells exposes the backing slice so callers can read values directly.
func (g *Grid) Cells() []uint8 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *Grid) Index(x, y int) int { return y*g.W + x }

// Get reports whether the cell at normalized coordinates (x, y) is alive.
func (g *Grid) Get(x, y int) bool { return g.data[g.Index(x, y)] != 0 }

// Set stores a value at normalized coordinates (x, y).
func (g *Grid) Set(x, y int, alive bool) {
	var v uint8
	if alive {
		v = 1
	}
	g.data[g.Index(x, y)] = v
}

// Toggle flips the cell at normalized coordinates (x, y).
func (g *Grid) Toggle(x, y int) {
	idx := g.Index(x, y)
	g.data[idx] ^= 1
}

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *Grid) Wrap(x, y int) (int, int) {
	x = (x%g.W + g.W) % g.W
	y = (y%g.H + g.H) % g.H
	return x, y
}

// Normalize maps coordinates onto the grid according to its edge policy.
// Looping grids always succeed; bounded grids report false for coordinates
// outside [0,W) x [0,H).
func (g *Grid) Normalize(x, y int) (int, int, bool) {
	if g.Edge == EdgeLooping {
		nx, ny := g.Wrap(x, y)
		return nx, ny, true
	}
	if x < 0 || x >= g.W || y < 0 || y >= g.H {
		return 0, 0, false
	}
	return x, y, true
}

// Contains reports whether (x, y) lies inside the grid without wrapping.
func (g *Grid) Contains(x, y int) bool {
	return x >= 0 && x < g.W && y >= 0 && y < g.H
}

// Clear fills the grid with dead cells.
func (g *Grid) Clear() {
	for i := range g.data {
		g.data[i] = 0
	}
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	data := make([]uint8, len(g.data))
	copy(data, g.data)
	return &Grid{W: g.W, H: g.H, Edge: g.Edge, data: data}
}

// Blank returns an empty grid with the same dimensions and edge policy.
func (g *Grid) Blank() *Grid {
	return &Grid{W: g.W, H: g.H, Edge: g.Edge, data: make([]uint8, len(g.data))}
}

// WithEdge returns a copy of the grid using a different edge policy.
func (g *Grid) WithEdge(edge EdgePolicy) *Grid {
	c := g.Clone()
	c.Edge = edge
	return c
}

// Resize returns a grid of the new dimensions holding the overlapping region
// of g anchored at the origin.
func (g *Grid) Resize(w, h int) (*Grid, error) {
	out, err := NewGrid(w, h, g.Edge)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h && y < g.H; y++ {
		for x := 0; x < w && x < g.W; x++ {
			out.data[out.Index(x, y)] = g.data[g.Index(x, y)]
		}
	}
	return out, nil
}

// Living counts the live cells.
func (g *Grid) Living() int {
	n := 0
	for _, c := range g.data {
		if c != 0 {
			n++
		}
	}
	return n
}

// Equal reports whether both grids share dimensions and cell values.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.W != o.W || g.H != o.H {
		return false
	}
	for i := range g.data {
		if g.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// Rows returns the grid as a [y][x] boolean matrix.
func (g *Grid) Rows() [][]bool {
	rows := make([][]bool, g.H)
	for y := range rows {
		row := make([]bool, g.W)
		for x := range row {
			row[x] = g.data[g.Index(x, y)] != 0
		}
		rows[y] = row
	}
	return rows
}
