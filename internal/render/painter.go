//go:build ebiten

package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"

	"mutant-life/internal/core"
)

// GridPainter uploads grid cells into a single RGBA image and draws it
// scaled. The image is reallocated when the grid dimensions change.
type GridPainter struct {
	w, h int
	img  *ebiten.Image
	buf  []byte
}

// NewGridPainter allocates a painter for a grid of size w*h.
func NewGridPainter(w, h int) *GridPainter {
	gp := &GridPainter{}
	gp.resize(w, h)
	return gp
}

func (gp *GridPainter) resize(w, h int) {
	gp.w, gp.h = w, h
	gp.buf = make([]byte, 4*w*h)
	gp.img = ebiten.NewImage(w, h)
}

// Blit draws g onto dst with the given colors and pixel scale.
func (gp *GridPainter) Blit(dst *ebiten.Image, g *core.Grid, on, off color.Color, scale int) {
	if g == nil {
		return
	}
	if g.W != gp.w || g.H != gp.h {
		gp.resize(g.W, g.H)
	}
	fillBinaryRGBA(gp.buf, g.Cells(), on, off)
	gp.img.WritePixels(gp.buf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	dst.DrawImage(gp.img, op)
}

// Size returns the dimensions of the underlying image.
func (gp *GridPainter) Size() (int, int) { return gp.w, gp.h }
