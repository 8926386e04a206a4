package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shelfpull/internal/cli"
	"shelfpull/internal/config"
	"shelfpull/internal/httpapi"
	"shelfpull/internal/logging"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "127.0.0.1", "Bind address")
	port := fs.Int("port", 3000, "Bind port")
	fixtures := fs.String("fixtures", "testdata/fixtures", "Directory containing <product-id>.json fixture files")
	shutdownTimeout := fs.Duration("shutdown-timeout", 5*time.Second, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := httpapi.NewServer(logger, httpapi.Options{
		Host:            *host,
		Port:            *port,
		FixturesDir:     *fixtures,
		ShutdownTimeout: *shutdownTimeout,
	})
	if err := server.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("fixture server failed")
		fmt.Fprintf(os.Stderr, "Fixture server failed: %v\n", err)
		return 1
	}
	return 0
}
