//go:build ebiten

package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"mutant-life/internal/core"
)

// Overlay tints cells born or killed by the latest generation on top of the
// grid. O toggles it.
type Overlay struct {
	scale int
	show  bool

	prev       *core.Grid
	cur        *core.Grid
	generation int

	maskImg *ebiten.Image
	maskBuf []byte
}

// NewOverlay constructs a hidden overlay.
func NewOverlay(scale int) *Overlay {
	return &Overlay{scale: scale}
}

// Update handles the toggle key and remembers the grid preceding the current
// generation.
func (o *Overlay) Update(g *core.Grid, generation int) {
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		o.show = !o.show
	}
	if g == o.cur {
		return
	}
	if generation == o.generation+1 {
		o.prev = o.cur
	} else {
		o.prev = nil
	}
	o.cur = g
	o.generation = generation
}

// Draw paints the change mask when enabled.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.show || o.cur == nil || o.prev == nil {
		return
	}
	w, h := o.cur.W, o.cur.H
	if o.maskImg == nil || o.maskImg.Bounds().Dx() != w || o.maskImg.Bounds().Dy() != h {
		o.maskImg = ebiten.NewImage(w, h)
		o.maskBuf = make([]byte, 4*w*h)
	}
	diffRGBA(o.maskBuf, o.prev, o.cur)
	o.maskImg.WritePixels(o.maskBuf)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(o.scale), float64(o.scale))
	screen.DrawImage(o.maskImg, op)
}
