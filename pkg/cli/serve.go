package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/cogmap/pkg/server"
	"github.com/m-mizutani/cogmap/pkg/usecase/session"
	"github.com/m-mizutani/cogmap/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg  config
		addr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address for the HTTP API",
			Value:       "127.0.0.1:8080",
			Sources:     cli.EnvVars("COGMAP_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the reasoning session API over HTTP",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggingContext(ctx)

			// The agent is stateless and shared; every session gets its
			// own vector memory through the factory.
			a, err := cfg.newAgent(ctx)
			if err != nil {
				return err
			}

			srv := server.New(addr, func() (*session.Session, error) {
				store, err := cfg.newStore()
				if err != nil {
					return nil, err
				}
				return session.New(a, store), nil
			})

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(ctx)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logging.From(ctx).Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
}
