package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/radar/internal/shared"
	"github.com/urfave/cli/v3"
)

// ArtistsFollow searches the provider for an artist and appends the best
// match to the favorites list.
func (r *Runner) ArtistsFollow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: artist name or search query", shared.ErrMissingArgument)
	}

	r.logger.Info("searching for artist", "query", query)

	matches, err := r.catalog.SearchArtists(ctx, query, 5)
	if err != nil {
		return fmt.Errorf("artist search failed: %w", err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("%w: no match for %q", shared.ErrArtistNotFound, query)
	}

	artist := matches[0]
	if err := r.artists.Follow(artist); err != nil {
		return fmt.Errorf("failed to follow artist: %w", err)
	}

	r.writePlainln("✓ Following %s", artist.Name)
	if len(artist.Genres) > 0 {
		r.writePlain("  Genres: %s\n", strings.Join(artist.Genres, ", "))
	}
	if len(matches) > 1 {
		r.writePlain("  Other matches:\n")
		for _, other := range matches[1:] {
			r.writePlain("    %s (%s)\n", other.Name, other.ID)
		}
	}

	return nil
}

// ArtistsUnfollow removes an artist from the favorites list by id or name.
func (r *Runner) ArtistsUnfollow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	target := strings.TrimSpace(cmd.StringArg("artist"))
	if target == "" {
		return fmt.Errorf("%w: artist id or name", shared.ErrMissingArgument)
	}

	id := target
	if artist, err := r.artists.Get(target); err != nil {
		// Not an id; fall back to a name match against the followed list.
		followed, listErr := r.artists.List()
		if listErr != nil {
			return listErr
		}
		for _, candidate := range followed {
			if strings.EqualFold(candidate.Name, target) {
				id = candidate.ID
				break
			}
		}
	} else {
		id = artist.ID
	}

	if err := r.artists.Unfollow(id); err != nil {
		return err
	}

	r.writePlainln("✓ Unfollowed %s", target)
	return nil
}

// ArtistsList prints the favorites list in follow order.
func (r *Runner) ArtistsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	followed, err := r.artists.List()
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(followed, cmd.Bool("pretty"))
	}

	if len(followed) == 0 {
		r.writePlainln("No followed artists yet. Try 'radar artists follow \"artist name\"'.")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Followed Artists (%d)", len(followed)))
	for i, artist := range followed {
		r.writePlain("%d. %s", i+1, artist.Name)
		if len(artist.Genres) > 0 {
			r.writePlain(" (%s)", strings.Join(artist.Genres, ", "))
		}
		r.writePlain("\n")
	}

	return nil
}

// artistsCommand handles the followed-artist list
func artistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "artists",
		Aliases: []string{"artist"},
		Usage:   "Manage followed artists",
		Commands: []*cli.Command{
			{
				Name:  "follow",
				Usage: "Search for an artist and follow the best match",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Action: r.ArtistsFollow,
			},
			{
				Name:  "unfollow",
				Usage: "Stop following an artist by id or name",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "artist",
					},
				},
				Action: r.ArtistsUnfollow,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List followed artists in follow order",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ArtistsList,
			},
		},
	}
}
