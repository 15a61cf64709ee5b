//go:build ebiten

package cli

import (
	"context"
	"errors"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mutant-life/internal/app"
	"mutant-life/internal/config"
)

func newGUICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gui",
		Short: "Open a window running the simulation",
	}
	flags := config.Bind(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.Resolve(os.Getenv)
		if err != nil {
			return err
		}
		logger := logrus.StandardLogger()
		loop, err := newSession(cfg, true, logger)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
				logger.WithError(err).Error("session stopped")
			}
		}()

		var peers func() int
		if cfg.RelayURL != "" {
			client := startPeer(ctx, cfg, loop, logger)
			peers = func() int { return len(client.Peers()) }
		}

		ctrl := app.NewController(ctx, loop, cfg.Seed, logger)
		game := app.New(loop, ctrl, cfg.Scale, peers)

		ebiten.SetWindowTitle("mutant-life")
		ebiten.SetTPS(cfg.TPS)
		ebiten.SetWindowSize(game.Layout(0, 0))
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

		if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
			return err
		}
		return nil
	}
	return cmd
}
