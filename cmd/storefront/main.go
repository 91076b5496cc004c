package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"

	"github.com/lankahomes/storefront/internal/pkg/config"
	"github.com/lankahomes/storefront/pkg/logger"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "storefront",
		Short: "LankaHomes storefront session front end",
		Long: `Storefront serves the marketplace front end and keeps one
authentication session per visitor against the LankaHomes API.

Configuration comes from the environment (PORT, API_BASE_URL,
TOKEN_STORAGE, REDIS_ADDR, MONGO_URI, ...).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		stubAPICmd(),
		loginCmd(),
		whoamiCmd(),
		logoutCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and initialises the process logger on out.
func setup(out io.Writer) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "storefront",
		Output:  out,
	})
	return cfg, log, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
