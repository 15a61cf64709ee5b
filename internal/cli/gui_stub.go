//go:build !ebiten

package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newGUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Open a window running the simulation (requires the ebiten build tag)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("the GUI requires building with `-tags ebiten`")
		},
	}
}
