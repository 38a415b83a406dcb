package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// CacheCleanup removes expired records from the catalog cache.
func (r *Runner) CacheCleanup(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	r.logger.Info("sweeping expired cache records")

	deleted, err := r.cache.Cleanup()
	if err != nil {
		return err
	}

	r.writePlainln("✓ Removed %d expired cache records", deleted)
	return nil
}

// CacheClear removes every cache record regardless of expiry.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	r.logger.Info("clearing catalog cache")

	if err := r.cache.Clear(); err != nil {
		return err
	}

	r.writePlainln("✓ Cache cleared. Next discovery run will refetch everything.")
	return nil
}

// cacheCommand handles catalog cache maintenance
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Maintain the local catalog cache",
		Commands: []*cli.Command{
			{
				Name:   "cleanup",
				Usage:  "Remove expired cache records",
				Action: r.CacheCleanup,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cache records",
				Action: r.CacheClear,
			},
		},
	}
}
