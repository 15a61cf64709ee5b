//go:build ebiten

package app

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"mutant-life/internal/render"
	"mutant-life/internal/ui"
)

// PanelWidth is the width in pixels of the side panel.
const PanelWidth = 220

// Game adapts a session to the ebiten.Game interface. It pulls the latest
// snapshot each frame; stepping happens on the session goroutine.
type Game struct {
	ctrl    *Controller
	sess    Session
	peers   func() int
	painter *render.GridPainter
	hud     *ui.HUD
	overlay *ui.Overlay

	onColor  color.Color
	offColor color.Color

	scale int
}

// New constructs a Game for the provided session. peers may be nil.
func New(sess Session, ctrl *Controller, scale int, peers func() int) *Game {
	if scale <= 0 {
		scale = 1
	}
	size := sess.Latest().Size()
	return &Game{
		ctrl:     ctrl,
		sess:     sess,
		peers:    peers,
		painter:  render.NewGridPainter(size.W, size.H),
		hud:      ui.NewHUD(PanelWidth, ctrl),
		overlay:  ui.NewOverlay(scale),
		onColor:  color.White,
		offColor: color.Black,
		scale:    scale,
	}
}

var digitKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
	ebiten.Key5, ebiten.Key6, ebiten.Key7, ebiten.Key8,
}

// Update handles per-frame input.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	var err error
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		err = g.ctrl.TogglePause()
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		err = g.ctrl.StepOnce()
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		err = g.ctrl.Reseed()
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		err = g.ctrl.Randomize()
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		err = g.ctrl.AdjustInterval(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		err = g.ctrl.AdjustInterval(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketRight):
		err = g.ctrl.AdjustMutation(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft):
		err = g.ctrl.AdjustMutation(-1)
	case inpututil.IsKeyJustPressed(ebiten.KeyM):
		err = g.ctrl.CycleMutationKind()
	case inpututil.IsKeyJustPressed(ebiten.KeyE):
		err = g.ctrl.ToggleEdges()
	}
	for i, key := range digitKeys {
		if inpututil.IsKeyJustPressed(key) {
			err = g.ctrl.SeedPattern(i + 1)
		}
	}
	if err != nil {
		g.ctrl.log.WithError(err).Warn("control failed")
	}

	snap := g.sess.Latest()
	peers := 0
	if g.peers != nil {
		peers = g.peers()
	}
	g.overlay.Update(snap.Grid, snap.Generation)
	g.hud.Update(snap, peers, snap.Grid.W*g.scale)
	return nil
}

// Draw renders the current snapshot.
func (g *Game) Draw(screen *ebiten.Image) {
	snap := g.sess.Latest()
	g.painter.Blit(screen, snap.Grid, g.onColor, g.offColor, g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, snap.Grid.W*g.scale, screen.Bounds().Dy())
}

// Layout returns the logical screen size, following remote resizes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sess.Latest().Size()
	h := s.H * g.scale
	if h < minPanelHeight {
		h = minPanelHeight
	}
	return s.W*g.scale + PanelWidth, h
}

const minPanelHeight = 420
