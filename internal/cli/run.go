package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mutant-life/internal/config"
	"mutant-life/internal/core"
	"mutant-life/internal/peer"
	"mutant-life/internal/render"
	"mutant-life/internal/session"
	"mutant-life/internal/sims/life"
)

const reconnectDelay = 2 * time.Second

func newRunCommand() *cobra.Command {
	var (
		generations int
		quiet       bool
		clearFrames bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a headless session, printing frames to the terminal",
	}
	flags := config.Bind(cmd.Flags())
	cmd.Flags().IntVar(&generations, "generations", 0, "stop after this many generations (0 runs until interrupted)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "do not print frames")
	cmd.Flags().BoolVar(&clearFrames, "clear", false, "clear the terminal before every frame")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.Resolve(os.Getenv)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := logrus.StandardLogger()
		loop, err := newSession(cfg, true, logger)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		var client *peer.Client
		if cfg.RelayURL != "" {
			client = startPeer(ctx, cfg, loop, logger)
		}
		if !quiet {
			tc := render.TextConfig{Clear: clearFrames}
			if client != nil {
				tc.Peers = func() int { return len(client.Peers()) }
			}
			loop.AddListener(render.NewText(cmd.OutOrStdout(), tc))
		}
		if generations > 0 {
			loop.AddListener(&generationLimit{limit: generations, cancel: cancel})
		}

		if err := loop.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	}
	return cmd
}

func newSession(cfg config.Config, autoStart bool, logger logrus.FieldLogger) (*session.Loop, error) {
	engine, err := cfg.Engine()
	if err != nil {
		return nil, err
	}
	return session.New(session.Config{
		Engine:    engine,
		Seed:      cfg.Seed,
		RNG:       core.NewRNG(cfg.RNGSeed),
		AutoStart: autoStart,
		Logger:    logger,
	})
}

// startPeer connects loop to the relay in the background, reconnecting until
// ctx is done.
func startPeer(ctx context.Context, cfg config.Config, loop *session.Loop, logger logrus.FieldLogger) *peer.Client {
	client := peer.New(peer.Config{
		URL:     cfg.RelayURL,
		Room:    cfg.Room,
		Session: loop,
		Logger:  logger,
	})
	loop.AddListener(client)
	go func() {
		for {
			err := client.Run(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				logger.WithError(err).Warn("relay connection lost")
			}
			select {
			case <-time.After(reconnectDelay):
			case <-ctx.Done():
				return
			}
		}
	}()
	return client
}

// generationLimit cancels the run once the session has advanced limit
// generations by stepping.
type generationLimit struct {
	limit  int
	steps  int
	cancel context.CancelFunc
}

func (g *generationLimit) StateChanged(_ life.Snapshot, origin session.Origin) {
	if origin != session.OriginStep {
		return
	}
	g.steps++
	if g.steps == g.limit {
		g.cancel()
	}
}

func (g *generationLimit) SettingsChanged(life.Config, session.Origin) {}
