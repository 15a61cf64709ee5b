package core

import "sort"

// Size describes the dimensions of a simulation grid.
type Size struct {
	W int
	H int
}

// Seeder populates an empty grid with a named starting layout.
type Seeder func(g *Grid, rng *RNG)

var seeds = map[string]Seeder{}

// RegisterSeed adds a seed layout under the provided name.
func RegisterSeed(name string, s Seeder) {
	if name == "" || s == nil {
		return
	}
	seeds[name] = s
}

// Seeds exposes the registry of available seed layouts.
func Seeds() map[string]Seeder {
	return seeds
}

// SeedNames returns the registered seed names in sorted order.
func SeedNames() []string {
	names := make([]string, 0, len(seeds))
	for name := range seeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
