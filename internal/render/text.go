package render

import (
	"bufio"
	"fmt"
	"io"
	"sync"

	"mutant-life/internal/session"
	"mutant-life/internal/sims/life"
)

const clearScreen = "\x1b[H\x1b[2J"

// TextConfig configures a Text renderer.
type TextConfig struct {
	// Clear emits an ANSI clear before every frame.
	Clear bool
	// Alive and Dead are the cell glyphs; they default to '#' and '.'.
	Alive, Dead rune
	// Peers, when set, reports the number of other connected viewers.
	Peers func() int
}

// Text draws snapshots as character grids. It implements session.Listener.
type Text struct {
	mu  sync.Mutex
	w   io.Writer
	cfg TextConfig
}

// NewText returns a renderer writing to w.
func NewText(w io.Writer, cfg TextConfig) *Text {
	if cfg.Alive == 0 {
		cfg.Alive = '#'
	}
	if cfg.Dead == 0 {
		cfg.Dead = '.'
	}
	return &Text{w: w, cfg: cfg}
}

// StateChanged draws the snapshot.
func (t *Text) StateChanged(snap life.Snapshot, _ session.Origin) {
	_ = t.Render(snap)
}

// SettingsChanged is a no-op; the next frame reflects the settings.
func (t *Text) SettingsChanged(life.Config, session.Origin) {}

// Render writes a single frame.
func (t *Text) Render(snap life.Snapshot) error {
	if snap.Grid == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	bw := bufio.NewWriter(t.w)
	if t.cfg.Clear {
		bw.WriteString(clearScreen)
	}
	g := snap.Grid
	cells := g.Cells()
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			if cells[g.Index(x, y)] != 0 {
				bw.WriteRune(t.cfg.Alive)
			} else {
				bw.WriteRune(t.cfg.Dead)
			}
		}
		bw.WriteByte('\n')
	}
	fmt.Fprintf(bw, "generation %d · living %d", snap.Generation, snap.Living)
	if t.cfg.Peers != nil {
		fmt.Fprintf(bw, " · viewers %d", t.cfg.Peers()+1)
	}
	bw.WriteByte('\n')
	return bw.Flush()
}
