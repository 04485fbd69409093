package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/ashfall/tdx/internal/shared"
	"github.com/ashfall/tdx/internal/telemetry"
)

func main() {
	// A missing .env is not an error; environment overrides are optional.
	_ = godotenv.Load()

	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}
	config.ApplyEnv()

	client := telemetry.NewClient(config.Telemetry.BaseURL, config.Telemetry.ReadingLimit, nil)
	api := telemetry.NewAPIService(config.Telemetry.BaseURL, nil)

	runner := NewRunner(RunnerOpts{
		Config: config,
		Client: client,
		API:    api,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "tdx",
		Usage:    "Live dashboard & tools for a sensor telemetry backend",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrServiceUnavailable) {
			logger.Fatalf("backend unavailable: %v", err)
		}
		logger.Fatalf("application error: %v", err)
	}
}
