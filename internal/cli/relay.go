package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"mutant-life/internal/config"
	lifenet "mutant-life/internal/net"
	"mutant-life/internal/relay"
)

const shutdownTimeout = 5 * time.Second

func newRelayCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Serve the websocket relay, health endpoints and static client files",
	}
	flags := config.Bind(cmd.Flags())
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := flags.Resolve(os.Getenv)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serveRelay(ctx, cfg, logrus.StandardLogger())
	}
	return cmd
}

func serveRelay(ctx context.Context, cfg config.Config, logger logrus.FieldLogger) error {
	rl := relay.New(relay.Config{Logger: logger})
	handler := lifenet.NewHTTPHandler(rl, lifenet.HTTPHandlerConfig{
		ClientDir: cfg.ClientDir,
		Logger:    logger,
	})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.WithField("addr", cfg.Addr).Info("relay listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("relay shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
