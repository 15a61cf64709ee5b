package ui

import (
	"fmt"
	"math"
	"strconv"

	"mutant-life/internal/core"
	"mutant-life/internal/sims/life"
)

// StepValue moves value one increment in direction dir. Log-scaled controls
// multiply by 10^(1/Step) and treat zero as the position below Min.
func StepValue(ctrl core.ParameterControl, value float64, dir int) float64 {
	if dir == 0 {
		return value
	}
	step := ctrl.Step
	if step <= 0 {
		step = 1
	}
	if !ctrl.LogScale {
		return ctrl.Clamp(value + float64(dir)*step)
	}
	if value <= 0 {
		if dir > 0 && ctrl.HasMin {
			return ctrl.Min
		}
		return 0
	}
	factor := math.Pow(10, 1/step)
	next := value * factor
	if dir < 0 {
		next = value / factor
		if ctrl.HasMin && next < ctrl.Min*(1-1e-9) {
			return 0
		}
	}
	return ctrl.Clamp(next)
}

// FormatValue renders a control value for the panel.
func FormatValue(ctrl core.ParameterControl, value float64) string {
	if ctrl.Type == core.ParamTypeInt {
		return strconv.Itoa(int(math.Round(value)))
	}
	if ctrl.LogScale {
		if value == 0 {
			return "off"
		}
		return strconv.FormatFloat(value, 'g', 3, 64)
	}
	precision := 1
	switch {
	case ctrl.Step < 0.001:
		precision = 4
	case ctrl.Step < 0.01:
		precision = 3
	case ctrl.Step < 0.1:
		precision = 2
	case ctrl.Step >= 1:
		precision = 0
	}
	return strconv.FormatFloat(value, 'f', precision, 64)
}

// StatusLines summarizes a snapshot for the side panel.
func StatusLines(snap life.Snapshot, peers int) []string {
	state := "paused"
	if snap.Running {
		state = "running"
	}
	cfg := snap.Config
	return []string{
		fmt.Sprintf("Generation %d", snap.Generation),
		fmt.Sprintf("Living %d", snap.Living),
		fmt.Sprintf("Viewers %d", peers+1),
		fmt.Sprintf("Grid %dx%d %s", cfg.Width, cfg.Height, cfg.EdgePolicy),
		fmt.Sprintf("Mutation %s", cfg.MutationKind.Label()),
		fmt.Sprintf("State %s", state),
	}
}

// KeyHelp lists the keyboard bindings shown under the controls.
var KeyHelp = []string{
	"Space pause  N step",
	"R reseed  S random",
	"1-8 seed patterns",
	"Up/Down interval",
	"[ ] mutation chance",
	"M kind  E edges",
	"O changes  Q quit",
}
