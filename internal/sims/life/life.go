// Package life implements Conway's Game of Life with random mutations.
package life

import (
	"mutant-life/internal/core"
	"mutant-life/internal/patterns"
)

// CountNeighbors counts live cells in the Moore neighborhood of (x, y).
// Looping grids wrap; on bounded grids off-grid neighbors are not counted.
func CountNeighbors(g *core.Grid, x, y int) int {
	cells := g.Cells()
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny, ok := g.Normalize(x+dx, y+dy)
			if !ok {
				continue
			}
			n += int(cells[g.Index(nx, ny)])
		}
	}
	return n
}

// Transition computes the next generation into a fresh grid. cur is not
// modified.
func Transition(cur *core.Grid) *core.Grid {
	next := cur.Blank()
	w, h := cur.W, cur.H
	src, dst := cur.Cells(), next.Cells()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			neighbors := CountNeighbors(cur, x, y)
			idx := y*w + x
			alive := src[idx] == 1
			if (alive && (neighbors == 2 || neighbors == 3)) || (!alive && neighbors == 3) {
				dst[idx] = 1
			}
		}
	}
	return next
}

// Mutate walks g in raster order and, with probability chancePercent/100 per
// cell, applies a mutation at that cell. Mutations write into g directly so
// later cells observe earlier hits. It returns the number of hits.
func Mutate(g *core.Grid, chancePercent float64, kind MutationKind, rng *core.RNG) int {
	if chancePercent <= 0 {
		return 0
	}
	p := chancePercent / 100
	hits := 0
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if !rng.Chance(p) {
				continue
			}
			hits++
			if kind == MutationStablePattern {
				// catalog names never fail to resolve
				_, _ = patterns.Stamp(g, x, y, patterns.RandomMutation(rng))
				continue
			}
			g.Toggle(x, y)
		}
	}
	return hits
}
