// Package cli wires the mutant-life commands.
package cli

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the `life` command tree.
func NewRootCommand() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:          "life",
		Short:        "Conway's Game of Life with mutation and a shared relay",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			logrus.SetOutput(cmd.ErrOrStderr())
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	root.AddCommand(
		newRelayCommand(),
		newRunCommand(),
		newGUICommand(),
		newSweepCommand(),
		newPatternsCommand(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
