package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spx/internal/shared"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

func main() {
	// A .env file is optional; SPX_* values land in the config loaders.
	_ = godotenv.Load()

	logger := shared.NewLogger(nil)
	if os.Getenv("SPX_DEBUG") != "" {
		shared.SetLogLevel(logger, log.DebugLevel)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "spx",
		Usage:    "Export your Spotify library to JSON or tab-separated text",
		Version:  "0.4.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrAuthFailed) {
			logger.Fatal("authentication failed, check your OAuth token or run `spx auth` for a fresh one")
		}
		if errors.Is(err, shared.ErrTimeout) {
			logger.Fatal("authorization timed out, run `spx auth` to try again")
		}
		logger.Fatalf("application error: %v", err)
	}
}
