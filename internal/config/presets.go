package config

import "slices"

// Presets are named starting points, keyed by graph family.
var Presets = map[string]map[string]*Config{
	"ring": {
		"loose": {
			Dimensions: 2, Dt: 0.05, Damping: 0.9, Repulsion: 10, Attraction: 1, IdealLength: 5,
			Centering: 0.01, MinDistance: 0.1, NodeStartSize: 20, Seed: 1,
			Run: RunSettings{MaxSteps: 2000, Epsilon: 1e-3, SettleSteps: 10},
		},
		"tight": {
			Dimensions: 2, Dt: 0.05, Damping: 0.8, Repulsion: 5, Attraction: 2, IdealLength: 2,
			Centering: 0.05, MinDistance: 0.1, NodeStartSize: 10, Seed: 1,
			Run: RunSettings{MaxSteps: 2000, Epsilon: 1e-3, SettleSteps: 10},
		},
	},
	"grid": {
		"sheet": {
			Dimensions: 2, Dt: 0.05, Damping: 0.85, Repulsion: 8, Attraction: 1.5, IdealLength: 3,
			Centering: 0.02, MinDistance: 0.1, NodeStartSize: 30, Seed: 3,
			Run: RunSettings{MaxSteps: 4000, Epsilon: 1e-3, SettleSteps: 20},
		},
		"cloth": {
			Dimensions: 3, Dt: 0.05, Damping: 0.85, Repulsion: 8, Attraction: 1.5, IdealLength: 3,
			Centering: 0.02, MinDistance: 0.1, NodeStartSize: 30, Seed: 3,
			Run: RunSettings{MaxSteps: 4000, Epsilon: 1e-3, SettleSteps: 20},
		},
	},
	"complete": {
		"sphere": {
			Dimensions: 3, Dt: 0.02, Damping: 0.9, Repulsion: 20, Attraction: 0.5, IdealLength: 6,
			Centering: 0.01, CenterOnCentroid: true, MinDistance: 0.1, NodeStartSize: 20, Seed: 7,
			Run: RunSettings{MaxSteps: 3000, Epsilon: 1e-3, SettleSteps: 10},
		},
	},
	"star": {
		"burst": {
			Dimensions: 2, Dt: 0.05, Damping: 0.9, Repulsion: 15, Attraction: 1, IdealLength: 4,
			Centering: 0.01, MinDistance: 0.1, NodeStartSize: 20, Seed: 1,
			Run: RunSettings{MaxSteps: 2000, Epsilon: 1e-3, SettleSteps: 10},
		},
		"classic": {
			Dimensions: 2, Dt: 0.035, Damping: 1, Repulsion: 0.1, Attraction: 0.1, IdealLength: 0,
			Centering: 0, Drag: 0.1, MinDistance: 0.1, NodeStartSize: 200, Seed: 1,
			Run: RunSettings{MaxSteps: 4000, Epsilon: 1e-3, SettleSteps: 10},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(family, name string) *Config {
	if presets, ok := Presets[family]; ok {
		if cfg, ok := presets[name]; ok {
			c := *cfg
			return &c
		}
	}
	return nil
}

func ListPresets(family string) []string {
	presets, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func Families() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
