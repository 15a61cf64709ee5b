package cli

import (
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mutant-life/internal/config"
	"mutant-life/internal/sims/life"
	"mutant-life/internal/sweep"
)

func newSweepCommand() *cobra.Command {
	var (
		generations int
		workers     int
		chances     []float64
		kinds       []string
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Measure population statistics across mutation settings",
	}
	flags := config.Bind(cmd.Flags())
	cmd.Flags().IntVar(&generations, "generations", 500, "generations to simulate per scenario")
	cmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "number of worker goroutines")
	cmd.Flags().Float64SliceVar(&chances, "chances", []float64{0, 0.001, 0.01, 0.1, 1}, "mutation chances in percent")
	cmd.Flags().StringSliceVar(&kinds, "kinds", []string{"single", "stable"}, "mutation kinds")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.Resolve(os.Getenv)
		if err != nil {
			return err
		}
		base, err := cfg.Engine()
		if err != nil {
			return err
		}
		parsed := make([]life.MutationKind, 0, len(kinds))
		for _, k := range kinds {
			kind, err := life.ParseMutationKind(k)
			if err != nil {
				return err
			}
			parsed = append(parsed, kind)
		}
		results, err := sweep.Run(cmd.Context(), sweep.Config{
			Base:        base,
			Seed:        cfg.Seed,
			RNGSeed:     cfg.RNGSeed,
			Generations: generations,
			Workers:     workers,
			Chances:     chances,
			Kinds:       parsed,
			Logger:      logrus.StandardLogger(),
		})
		if err != nil {
			return err
		}
		return sweep.Write(cmd.OutOrStdout(), results)
	}
	return cmd
}
