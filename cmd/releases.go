package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/radar/internal/formatter"
	"github.com/desertthunder/radar/internal/models"
	"github.com/desertthunder/radar/internal/shared"
	"github.com/desertthunder/radar/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ReleasesNew finds releases from followed artists inside the lookback window.
func (r *Runner) ReleasesNew(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	days := cmd.Int("days")
	if days != 0 && (days < 1 || days > 14) {
		return fmt.Errorf("%w: --days must be between 1 and 14, got %d", shared.ErrInvalidFlag, days)
	}

	favorites, err := r.artists.List()
	if err != nil {
		return err
	}
	if len(favorites) == 0 {
		r.writePlainln("No followed artists yet. Try 'radar artists follow \"artist name\"'.")
		return nil
	}

	opts := tasks.BatchOpts{
		Priority:     !cmd.Bool("background"),
		ForceRefresh: cmd.Bool("force"),
		Limit:        cmd.Int("limit"),
	}

	r.logger.Info("checking for new releases", "artists", len(favorites), "days", days)
	r.writePlain("Checking %d artists for new releases...\n\n", len(favorites))

	progressCh, done := r.startProgressPrinter()
	releases, err := r.engine.FindNewReleases(ctx, progressCh, favorites, days, opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	return r.outputReleases(cmd, "New Releases", releases)
}

// ReleasesUpcoming finds releases from followed artists dated in the future.
func (r *Runner) ReleasesUpcoming(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireEngine(); err != nil {
		return err
	}

	favorites, err := r.artists.List()
	if err != nil {
		return err
	}
	if len(favorites) == 0 {
		r.writePlainln("No followed artists yet. Try 'radar artists follow \"artist name\"'.")
		return nil
	}

	opts := tasks.BatchOpts{
		Priority:     !cmd.Bool("background"),
		ForceRefresh: cmd.Bool("force"),
	}

	r.logger.Info("checking for upcoming releases", "artists", len(favorites))
	r.writePlain("Checking %d artists for upcoming releases...\n\n", len(favorites))

	progressCh, done := r.startProgressPrinter()
	releases, err := r.engine.FindUpcomingReleases(ctx, progressCh, favorites, cmd.Int("limit"), opts)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	return r.outputReleases(cmd, "Upcoming Releases", releases)
}

// startProgressPrinter consumes progress updates on a goroutine and prints
// them as they arrive. The caller closes the progress channel when the
// engine operation finishes, then waits on done before writing results so
// the printer and the result renderer never interleave on r.output.
func (r *Runner) startProgressPrinter() (chan tasks.ProgressUpdate, chan struct{}) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.CacheLookup:
				r.writePlain("💾 %s\n", update.Message)
			case tasks.FetchCatalog:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.EnrichDetails:
				r.writePlain("\n🔍 %s\n", update.Message)
			}
		}
	}()
	return progressCh, done
}

// outputReleases renders a release list according to the command's output flags.
func (r *Runner) outputReleases(cmd *cli.Command, title string, releases []models.ClassifiedRelease) error {
	if cmd.Bool("json") {
		return r.writeJSON(releases, cmd.Bool("pretty"))
	}

	output := cmd.String("output")
	switch format := cmd.String("format"); format {
	case "csv":
		path, err := formatter.WriteCSVExport(releases, output)
		if err != nil {
			return err
		}
		r.writePlainln("✓ Exported %d releases to %s", len(releases), path)
		return nil
	case "markdown", "md":
		path, err := formatter.WriteMarkdownExport(title, releases, output)
		if err != nil {
			return err
		}
		r.writePlainln("✓ Exported %d releases to %s", len(releases), path)
		return nil
	case "", "text":
		if output != "" {
			path, err := formatter.WriteTextExport(title, releases, output)
			if err != nil {
				return err
			}
			r.writePlainln("✓ Exported %d releases to %s", len(releases), path)
			return nil
		}
	default:
		return fmt.Errorf("%w: unknown format '%s' (text, csv, or markdown)", shared.ErrInvalidFlag, format)
	}

	if len(releases) == 0 {
		r.writePlainln("Nothing found. All quiet on the release front.")
		return nil
	}

	r.writePlain("\n")
	r.writePlainHeader(fmt.Sprintf("%s (%d)", title, len(releases)))
	for i, release := range releases {
		r.writePlain("%d. %s - %s (%s, %s)",
			i+1,
			release.PrimaryArtist.Name,
			release.Entry.Title,
			release.Entry.Type,
			release.Entry.DateString(),
		)
		if len(release.Collaborators) > 0 {
			r.writePlain(" [with %s]", strings.Join(release.Collaborators, ", "))
		}
		r.writePlain("\n")
		if release.Entry.URL != "" {
			r.writePlain("   %s\n", release.Entry.URL)
		}
	}

	return nil
}

// releasesCommand handles release discovery queries
func releasesCommand(r *Runner) *cli.Command {
	outputFlags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Export format (text, csv, markdown)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path",
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "Bypass cached results and refetch",
		},
		&cli.BoolFlag{
			Name:  "background",
			Usage: "Use background pacing (slower, gentler on the API)",
		},
	}

	return &cli.Command{
		Name:    "releases",
		Aliases: []string{"rel"},
		Usage:   "Discover new and upcoming releases",
		Commands: []*cli.Command{
			{
				Name:  "new",
				Usage: "Releases from the trailing lookback window",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:    "days",
						Aliases: []string{"d"},
						Usage:   "Lookback window in days (1-14, 0 uses config)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum releases to return (0 = no limit)",
					},
				}, outputFlags...),
				Action: r.ReleasesNew,
			},
			{
				Name:  "upcoming",
				Usage: "Announced releases dated in the future",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum releases to return (0 = no limit)",
					},
				}, outputFlags...),
				Action: r.ReleasesUpcoming,
			},
		},
	}
}
