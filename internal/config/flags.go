package config

import (
	"github.com/spf13/pflag"
)

// Flags binds Config fields to a flag set. Flag values override the file only
// when the flag was set explicitly.
type Flags struct {
	fs   *pflag.FlagSet
	path string
	v    Config
}

type binding struct {
	name string
	copy func(dst, src *Config)
}

var bindings = []binding{
	{"width", func(d, s *Config) { d.Width = s.Width }},
	{"height", func(d, s *Config) { d.Height = s.Height }},
	{"interval", func(d, s *Config) { d.IntervalMs = s.IntervalMs }},
	{"mutation-chance", func(d, s *Config) { d.MutationChance = s.MutationChance }},
	{"mutation-type", func(d, s *Config) { d.MutationType = s.MutationType }},
	{"edge-looping", func(d, s *Config) { d.EdgeLooping = s.EdgeLooping }},
	{"seed", func(d, s *Config) { d.Seed = s.Seed }},
	{"rng-seed", func(d, s *Config) { d.RNGSeed = s.RNGSeed }},
	{"room", func(d, s *Config) { d.Room = s.Room }},
	{"relay", func(d, s *Config) { d.RelayURL = s.RelayURL }},
	{"addr", func(d, s *Config) { d.Addr = s.Addr }},
	{"client-dir", func(d, s *Config) { d.ClientDir = s.ClientDir }},
	{"scale", func(d, s *Config) { d.Scale = s.Scale }},
	{"tps", func(d, s *Config) { d.TPS = s.TPS }},
}

// Bind registers the configuration flags on fs.
func Bind(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs, v: Default()}
	fs.StringVar(&f.path, "config", "", "YAML configuration file")
	fs.IntVar(&f.v.Width, "width", f.v.Width, "grid width in cells")
	fs.IntVar(&f.v.Height, "height", f.v.Height, "grid height in cells")
	fs.Float64Var(&f.v.IntervalMs, "interval", f.v.IntervalMs, "milliseconds between generations")
	fs.Float64Var(&f.v.MutationChance, "mutation-chance", f.v.MutationChance, "per-cell mutation chance in percent")
	fs.StringVar(&f.v.MutationType, "mutation-type", f.v.MutationType, "mutation kind (single|stable)")
	fs.BoolVar(&f.v.EdgeLooping, "edge-looping", f.v.EdgeLooping, "wrap neighbors around the grid edges")
	fs.StringVar(&f.v.Seed, "seed", f.v.Seed, "initial layout")
	fs.Int64Var(&f.v.RNGSeed, "rng-seed", f.v.RNGSeed, "random number generator seed")
	fs.StringVar(&f.v.Room, "room", f.v.Room, "relay room to join")
	fs.StringVar(&f.v.RelayURL, "relay", f.v.RelayURL, "relay websocket URL (empty runs offline)")
	fs.StringVar(&f.v.Addr, "addr", f.v.Addr, "relay listen address")
	fs.StringVar(&f.v.ClientDir, "client-dir", f.v.ClientDir, "directory served as static files by the relay")
	fs.IntVar(&f.v.Scale, "scale", f.v.Scale, "pixel scale factor for the window")
	fs.IntVar(&f.v.TPS, "tps", f.v.TPS, "window ticks per second")
	return f
}

// Resolve merges defaults, the config file and explicitly set flags. getenv
// supplies PORT, which replaces the listen address unless --addr was given.
func (f *Flags) Resolve(getenv func(string) string) (Config, error) {
	cfg := Default()
	if f.path != "" {
		loaded, err := Load(f.path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	for _, b := range bindings {
		if f.fs.Changed(b.name) {
			b.copy(&cfg, &f.v)
		}
	}
	if getenv != nil && !f.fs.Changed("addr") {
		if port := getenv("PORT"); port != "" {
			cfg.Addr = ":" + port
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
