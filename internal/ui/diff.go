package ui

import "mutant-life/internal/core"

// diffRGBA marks births and deaths between prev and cur in buf. Unchanged
// cells are transparent. Grids of different sizes produce an empty mask.
func diffRGBA(buf []byte, prev, cur *core.Grid) {
	for i := range buf {
		buf[i] = 0
	}
	if prev == nil || cur == nil || prev.W != cur.W || prev.H != cur.H {
		return
	}
	before, after := prev.Cells(), cur.Cells()
	for i := range after {
		base := i * 4
		switch {
		case before[i] == 0 && after[i] != 0:
			buf[base+0], buf[base+1], buf[base+2], buf[base+3] = 60, 200, 90, 160
		case before[i] != 0 && after[i] == 0:
			buf[base+0], buf[base+1], buf[base+2], buf[base+3] = 210, 60, 60, 160
		}
	}
}
