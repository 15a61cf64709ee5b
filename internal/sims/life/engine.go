package life

import (
	"fmt"

	"mutant-life/internal/core"
	"mutant-life/internal/patterns"
)

// State is the replicated part of a simulation: the grid and its generation.
type State struct {
	Grid       *core.Grid
	Generation int
}

// Snapshot is a read-only view of the engine after an operation. The grid is
// shared with the engine and must not be modified.
type Snapshot struct {
	Grid       *core.Grid
	Generation int
	Living     int
	Running    bool
	Config     Config
}

// Size returns the snapshot grid dimensions.
func (s Snapshot) Size() core.Size { return s.Grid.Size() }

// Engine owns a Game of Life grid and advances it one generation at a time.
// Engine is not safe for concurrent use; the session loop serializes access.
// Grids handed out through snapshots are never written again.
type Engine struct {
	cfg     Config
	state   State
	running bool
	rng     *core.RNG
}

// New validates cfg and seeds a fresh grid with the named layout. An empty
// seed selects the default layout.
func New(cfg Config, seed string, rng *core.RNG) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = core.NewRNG(1)
	}
	if seed == "" {
		seed = patterns.DefaultSeed
	}
	e := &Engine{cfg: cfg, rng: rng}
	if err := e.Reseed(seed); err != nil {
		return nil, err
	}
	return e, nil
}

// Config returns the active configuration.
func (e *Engine) Config() Config { return e.cfg }

// State returns the current grid and generation.
func (e *Engine) State() State { return e.state }

// Running reports whether the engine is started.
func (e *Engine) Running() bool { return e.running }

// Start marks the engine running. Starting twice is a no-op.
func (e *Engine) Start() { e.running = true }

// Stop marks the engine stopped. Stopping twice is a no-op.
func (e *Engine) Stop() { e.running = false }

// Snapshot captures the current state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Grid:       e.state.Grid,
		Generation: e.state.Generation,
		Living:     e.state.Grid.Living(),
		Running:    e.running,
		Config:     e.cfg,
	}
}

// Reseed replaces the grid with the named layout and resets the generation.
// The running flag is left alone.
func (e *Engine) Reseed(name string) error {
	g, err := core.NewGrid(e.cfg.Width, e.cfg.Height, e.cfg.EdgePolicy)
	if err != nil {
		return err
	}
	if err := patterns.Seed(g, name, e.rng); err != nil {
		return err
	}
	e.state = State{Grid: g}
	return nil
}

// Step applies one round of mutations to a working copy of the grid, then
// computes the next generation from the mutated copy.
func (e *Engine) Step() Snapshot {
	work := e.state.Grid
	if e.cfg.MutationChancePercent > 0 {
		work = work.Clone()
		Mutate(work, e.cfg.MutationChancePercent, e.cfg.MutationKind, e.rng)
	}
	e.state = State{Grid: Transition(work), Generation: e.state.Generation + 1}
	return e.Snapshot()
}

// Apply installs a new local configuration. A dimension change or a non-empty
// seed reseeds the grid and resets the generation; otherwise the grid is kept
// and only the edge policy follows cfg. On error the previous configuration
// stays active.
func (e *Engine) Apply(cfg Config, seed string) (bool, error) {
	if err := cfg.Validate(); err != nil {
		return false, err
	}
	if !cfg.SameSize(e.cfg) && seed == "" {
		seed = patterns.DefaultSeed
	}
	if seed != "" {
		if _, ok := core.Seeds()[seed]; !ok {
			return false, fmt.Errorf("%w: seed %q", patterns.ErrUnknownPattern, seed)
		}
	}
	e.cfg = cfg
	if seed != "" {
		if err := e.Reseed(seed); err != nil {
			return false, err
		}
		return true, nil
	}
	if e.state.Grid.Edge != cfg.EdgePolicy {
		e.state.Grid = e.state.Grid.WithEdge(cfg.EdgePolicy)
	}
	return false, nil
}

// ReplaceState adopts a grid and generation received from elsewhere. The
// engine takes ownership of s.Grid. Configured dimensions follow the grid.
func (e *Engine) ReplaceState(s State) error {
	if s.Grid == nil || s.Grid.W <= 0 || s.Grid.H <= 0 {
		return fmt.Errorf("%w: missing grid", ErrInvalidState)
	}
	if s.Generation < 0 {
		return fmt.Errorf("%w: generation %d", ErrInvalidState, s.Generation)
	}
	g := s.Grid
	if g.Edge != e.cfg.EdgePolicy {
		g = g.WithEdge(e.cfg.EdgePolicy)
	}
	e.cfg.Width, e.cfg.Height = g.W, g.H
	e.state = State{Grid: g, Generation: s.Generation}
	return nil
}

// ReplaceConfig adopts settings received from elsewhere without reseeding.
// When the dimensions differ the grid is resized, keeping the overlapping
// region; the generation is preserved.
func (e *Engine) ReplaceConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	g := e.state.Grid
	if g.W != cfg.Width || g.H != cfg.Height {
		resized, err := g.Resize(cfg.Width, cfg.Height)
		if err != nil {
			return err
		}
		g = resized
	}
	if g.Edge != cfg.EdgePolicy {
		g = g.WithEdge(cfg.EdgePolicy)
	}
	e.cfg = cfg
	e.state.Grid = g
	return nil
}
