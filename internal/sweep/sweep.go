// Package sweep runs the engine headless over a grid of mutation settings and
// summarises how the population evolves under each.
package sweep

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"mutant-life/internal/core"
	"mutant-life/internal/sims/life"
)

// Scenario is one point of the sweep.
type Scenario struct {
	ChancePercent float64
	Kind          life.MutationKind
}

func (s Scenario) String() string {
	return fmt.Sprintf("chance=%g%% kind=%s", s.ChancePercent, s.Kind)
}

// Result summarises the population of one scenario.
type Result struct {
	Scenario
	Initial    int
	Final      int
	Peak       int
	Min        int
	Mean       float64
	Generation int
	ExtinctAt  int // generation at which the grid first emptied, 0 if never
}

// Config describes a sweep.
type Config struct {
	Base        life.Config
	Seed        string
	RNGSeed     int64
	Generations int
	Workers     int
	Chances     []float64
	Kinds       []life.MutationKind
	Logger      logrus.FieldLogger
}

// Scenarios expands chances and kinds into their cross product.
func Scenarios(chances []float64, kinds []life.MutationKind) []Scenario {
	out := make([]Scenario, 0, len(chances)*len(kinds))
	for _, kind := range kinds {
		for _, chance := range chances {
			out = append(out, Scenario{ChancePercent: chance, Kind: kind})
		}
	}
	return out
}

// Run evaluates every scenario on a pool of workers. Results are ordered by
// kind, then chance. Every scenario uses the same RNG seed so runs are
// reproducible.
func Run(ctx context.Context, cfg Config) ([]Result, error) {
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("generations must be positive, got %d", cfg.Generations)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "sweep")

	sets := Scenarios(cfg.Chances, cfg.Kinds)
	for _, s := range sets {
		scfg := cfg.Base
		scfg.MutationChancePercent = s.ChancePercent
		scfg.MutationKind = s.Kind
		if err := scfg.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %s: %w", s, err)
		}
	}
	logger.WithFields(logrus.Fields{
		"scenarios":   len(sets),
		"workers":     workers,
		"generations": cfg.Generations,
	}).Info("sweep started")

	type outcome struct {
		res Result
		err error
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan Scenario)
	results := make(chan outcome)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				res, err := RunScenario(ctx, cfg, s)
				select {
				case results <- outcome{res: res, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for _, s := range sets {
			select {
			case jobs <- s:
			case <-ctx.Done():
				return
			}
		}
	}()

	all := make([]Result, 0, len(sets))
	for out := range results {
		if out.err != nil {
			cancel()
			return nil, out.err
		}
		all = append(all, out.res)
		logger.WithField("scenario", out.res.Scenario.String()).Debug("scenario finished")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Kind != all[j].Kind {
			return all[i].Kind < all[j].Kind
		}
		return all[i].ChancePercent < all[j].ChancePercent
	})
	return all, nil
}

// RunScenario steps a fresh engine for cfg.Generations generations.
func RunScenario(ctx context.Context, cfg Config, s Scenario) (Result, error) {
	ecfg := cfg.Base
	ecfg.MutationChancePercent = s.ChancePercent
	ecfg.MutationKind = s.Kind
	engine, err := life.New(ecfg, cfg.Seed, core.NewRNG(cfg.RNGSeed))
	if err != nil {
		return Result{}, fmt.Errorf("scenario %s: %w", s, err)
	}

	snap := engine.Snapshot()
	res := Result{Scenario: s, Initial: snap.Living, Peak: snap.Living, Min: snap.Living}
	total := 0
	for gen := 0; gen < cfg.Generations; gen++ {
		if gen%64 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		snap = engine.Step()
		total += snap.Living
		if snap.Living > res.Peak {
			res.Peak = snap.Living
		}
		if snap.Living < res.Min {
			res.Min = snap.Living
		}
		if snap.Living == 0 && res.ExtinctAt == 0 {
			res.ExtinctAt = snap.Generation
		}
	}
	res.Final = snap.Living
	res.Generation = snap.Generation
	res.Mean = float64(total) / float64(cfg.Generations)
	return res, nil
}

// Write prints results as an aligned table.
func Write(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "kind\tchance%\tinitial\tfinal\tpeak\tmin\tmean\textinct")
	for _, r := range results {
		extinct := "-"
		if r.ExtinctAt > 0 {
			extinct = fmt.Sprintf("gen %d", r.ExtinctAt)
		}
		fmt.Fprintf(tw, "%s\t%g\t%d\t%d\t%d\t%d\t%.1f\t%s\n",
			r.Kind, r.ChancePercent, r.Initial, r.Final, r.Peak, r.Min, r.Mean, extinct)
	}
	return tw.Flush()
}
