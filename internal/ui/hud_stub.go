//go:build !ebiten

package ui

import (
	"mutant-life/internal/core"
	"mutant-life/internal/sims/life"
)

// HUD is a no-op placeholder for headless builds.
type HUD struct{}

// NewHUD returns nil in the headless build.
func NewHUD(int, core.FloatParameterSetter) *HUD { return nil }

// Update is a no-op in the headless build.
func (h *HUD) Update(life.Snapshot, int, int) {}

// Draw is a no-op in the headless build.
func (h *HUD) Draw(any, int, int) {}

// Overlay is a no-op placeholder used when the ebiten build tag is absent.
type Overlay struct{}

// NewOverlay constructs a stub overlay.
func NewOverlay(int) *Overlay { return &Overlay{} }

// Update is a no-op in headless builds.
func (o *Overlay) Update(*core.Grid, int) {}

// Draw is a no-op placeholder.
func (o *Overlay) Draw(any) {}
