package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mutant-life/internal/core"
	"mutant-life/internal/patterns"
)

func newPatternsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the pattern catalog and seed layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "patterns:")
			for _, name := range patterns.Names() {
				p, _ := patterns.Lookup(name)
				fmt.Fprintf(out, "  %-8s %d cells\n", name, len(p.Cells))
			}
			fmt.Fprintf(out, "mutation: %s\n", strings.Join(patterns.MutationPatterns(), ", "))
			fmt.Fprintf(out, "seeds: %s\n", strings.Join(core.SeedNames(), ", "))
			return nil
		},
	}
}
