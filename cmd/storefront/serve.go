package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/lankahomes/storefront/internal/app"
	"github.com/lankahomes/storefront/internal/infrastructure/stubapi"
	"github.com/lankahomes/storefront/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(os.Stdout)
			if err != nil {
				return err
			}

			ctx, stop := signalContext()
			defer stop()

			srv, err := app.NewServer(ctx, cfg, log)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err = <-errCh:
			case <-ctx.Done():
				log.Info().Msg("shutting down")
			}

			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return errors.Join(err, srv.Shutdown(sctx))
		},
	}
}

func stubAPICmd() *cobra.Command {
	var skipListings bool

	cmd := &cobra.Command{
		Use:   "stub-api",
		Short: "Run an in-memory marketplace backend for development",
		Long: `Run an in-memory stand-in for the LankaHomes API on STUB_PORT.

It seeds the admin account admin@lankahomes.lk / admin123 and a
handful of listings. Point API_BASE_URL at http://localhost:<port>/api.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(os.Stdout)
			if err != nil {
				return err
			}
			log = logger.For(log, "stubapi")

			ctx, stop := signalContext()
			defer stop()

			srv, err := stubapi.New(ctx, stubapi.Config{
				JWTSecret:    cfg.Stub.JWTSecret,
				TokenTTL:     cfg.Session.TokenTTL,
				SkipListings: skipListings,
			}, log)
			if err != nil {
				return err
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("port", cfg.Stub.Port).Msg("stub api listening")
				errCh <- srv.Start(":" + cfg.Stub.Port)
			}()

			select {
			case err = <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					err = nil
				}
			case <-ctx.Done():
			}

			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return errors.Join(err, srv.Shutdown(sctx))
		},
	}

	cmd.Flags().BoolVar(&skipListings, "empty", false, "Start without seeded listings")
	return cmd
}
