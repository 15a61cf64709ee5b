package life

import (
	"strconv"

	"mutant-life/internal/core"
)

// Parameters exposes the snapshot configuration for display.
func (s Snapshot) Parameters() core.ParameterSnapshot {
	cfg := s.Config
	groups := []core.ParameterGroup{
		{
			Name: "Grid",
			Params: []core.Parameter{
				intParam("w", "Width", cfg.Width),
				intParam("h", "Height", cfg.Height),
				boolParam("edge_looping", "Edge looping", cfg.EdgePolicy.Looping()),
			},
		},
		{
			Name: "Timing",
			Params: []core.Parameter{
				floatParam("interval_ms", "Update interval (ms)", cfg.UpdateIntervalMs),
				intParam("generation", "Generation", s.Generation),
				intParam("living", "Living cells", s.Living),
			},
		},
		{
			Name: "Mutation",
			Params: []core.Parameter{
				floatParam("mutation_chance", "Mutation chance (%)", cfg.MutationChancePercent),
				{
					Key:   "mutation_type",
					Label: "Mutation type",
					Type:  core.ParamTypeString,
					Value: string(cfg.MutationKind),
				},
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the HUD-adjustable settings.
func (s Snapshot) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{
			Key:    "interval_ms",
			Label:  "Update interval (ms)",
			Type:   core.ParamTypeFloat,
			Step:   10,
			Min:    10,
			Max:    2000,
			HasMin: true,
			HasMax: true,
		},
		{
			Key:      "mutation_chance",
			Label:    "Mutation chance (%)",
			Type:     core.ParamTypeFloat,
			Step:     4,
			LogScale: true,
			Min:      0.0001,
			Max:      10,
			HasMin:   true,
			HasMax:   true,
		},
	}
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}

func boolParam(key, label string, value bool) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeBool,
		Value: strconv.FormatBool(value),
	}
}
