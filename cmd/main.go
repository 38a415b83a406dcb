package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/desertthunder/radar/internal/services"
	"github.com/desertthunder/radar/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	opts := RunnerOpts{Config: config, Logger: logger}

	if db, err := shared.NewDatabase(config.Database.Path); err == nil {
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		opts.DB = db
		defer db.Close()
	} else {
		logger.Warn("database unavailable, run 'radar setup'", "error", err)
	}

	creds := config.Credentials.Spotify
	if creds.ClientID != "" && creds.ClientSecret != "" {
		tokens, err := services.NewTokenProvider(creds.ClientID, creds.ClientSecret, "", nil)
		if err != nil {
			logger.Warn("failed to configure Spotify credentials", "error", err)
		} else {
			fetcher := services.NewFetcher(tokens, services.FetcherOpts{
				HTTPClient: &http.Client{Timeout: 30 * time.Second},
				Limiter:    rate.NewLimiter(rate.Limit(config.Discovery.RequestsPerSecond), 1),
				Logger:     logger,
			})
			opts.Fetcher = fetcher
			opts.Catalog = services.NewSpotifyService(fetcher, "", logger)
		}
	}

	runner := NewRunner(opts)

	app := &cli.Command{
		Name:     "radar",
		Usage:    "Track new & upcoming releases from followed Spotify artists",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
