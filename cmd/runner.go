package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/radar/internal/repositories"
	"github.com/desertthunder/radar/internal/services"
	"github.com/desertthunder/radar/internal/shared"
	"github.com/desertthunder/radar/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	catalog services.Catalog
	fetcher *services.Fetcher
	db      *sql.DB
	artists *repositories.ArtistRepository
	cache   *repositories.CacheRepository
	engine  *tasks.DiscoveryEngine
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Catalog services.Catalog
	Fetcher *services.Fetcher
	DB      *sql.DB
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:  opts.Config,
		catalog: opts.Catalog,
		fetcher: opts.Fetcher,
		db:      opts.DB,
		logger:  opts.Logger,
		output:  opts.Output,
	}

	if opts.DB != nil {
		r.artists = repositories.NewArtistRepository(opts.DB)
		r.cache = repositories.NewCacheRepository(opts.DB)
	}
	if opts.Catalog != nil && r.cache != nil {
		r.engine = tasks.NewDiscoveryEngine(opts.Catalog, r.cache, opts.Config.Discovery, opts.Logger)
	}

	return r
}

// SetLogger replaces the runner's logger, e.g. to redirect to a file while
// the TUI owns the terminal. The discovery engine follows, so its warnings
// never print over the alternate screen.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if r.engine != nil {
		r.engine.SetLogger(l)
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, artistsCommand, releasesCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireStore ensures the database-backed repositories are available.
func (r *Runner) requireStore() error {
	if r.artists == nil || r.cache == nil {
		return fmt.Errorf("%w: database not initialized, run 'radar setup' first", shared.ErrServiceUnavailable)
	}
	return nil
}

// requireEngine ensures the discovery engine and its catalog provider are available.
func (r *Runner) requireEngine() error {
	if err := r.requireStore(); err != nil {
		return err
	}
	if r.engine == nil || r.catalog == nil {
		return fmt.Errorf("%w: Spotify credentials missing, add them to config.toml", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
