package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/radar/internal/models"
	"github.com/desertthunder/radar/internal/shared"
	"github.com/urfave/cli/v3"
)

type mockCatalog struct {
	artists  []models.Artist
	catalogs map[string][]models.CatalogEntry
}

func (m *mockCatalog) ArtistCatalog(_ context.Context, artistID string) ([]models.CatalogEntry, error) {
	return m.catalogs[artistID], nil
}

func (m *mockCatalog) Album(context.Context, string) (*models.CatalogEntry, error) {
	return nil, shared.ErrAlbumNotFound
}

func (m *mockCatalog) SearchArtists(context.Context, string, int) ([]models.Artist, error) {
	return m.artists, nil
}

func (m *mockCatalog) Name() string { return "mock" }

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("write failed") }

// newTestRunner wires a Runner over an in-memory database and mock catalog.
func newTestRunner(t *testing.T, catalog *mockCatalog, output *bytes.Buffer) *Runner {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	config := shared.DefaultConfig()
	config.Discovery.PriorityDelayMS = 0
	config.Discovery.BackgroundDelayMS = 0

	return NewRunner(RunnerOpts{
		Config:  config,
		Catalog: catalog,
		DB:      db,
		Output:  output,
	})
}

func runCLI(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "radar", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"radar"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("without database leaves repositories nil", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.artists != nil || runner.cache != nil || runner.engine != nil {
				t.Error("expected no repositories without a database")
			}
			if err := runner.requireStore(); !errors.Is(err, shared.ErrServiceUnavailable) {
				t.Errorf("expected ErrServiceUnavailable, got %v", err)
			}
		})

		t.Run("with database and catalog wires the engine", func(t *testing.T) {
			runner := newTestRunner(t, &mockCatalog{}, &bytes.Buffer{})

			if runner.artists == nil || runner.cache == nil {
				t.Error("expected repositories to be wired")
			}
			if runner.engine == nil {
				t.Error("expected discovery engine to be wired")
			}
			if err := runner.requireEngine(); err != nil {
				t.Errorf("expected engine available, got %v", err)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: failWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "hello world" {
			t.Errorf("expected 'hello world', got %q", output.String())
		}
	})

	t.Run("SetLogger", func(t *testing.T) {
		t.Run("replaces the runner logger", func(t *testing.T) {
			runner := newTestRunner(t, &mockCatalog{}, &bytes.Buffer{})

			replacement := shared.NewLogger(io.Discard)
			runner.SetLogger(replacement)

			if runner.logger != replacement {
				t.Error("expected runner logger to be replaced")
			}
		})

		t.Run("tolerates a runner without an engine", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			runner.SetLogger(shared.NewLogger(io.Discard))
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 5 {
			t.Errorf("expected 5 top-level commands, got %d", len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

func TestArtistCommands(t *testing.T) {
	catalog := &mockCatalog{
		artists: []models.Artist{
			{ID: "artist1", Name: "Night Shapes", Genres: []string{"shoegaze"}},
			{ID: "artist2", Name: "Night Shades"},
		},
	}

	t.Run("follow then list", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(t, catalog, output)

		if err := runCLI(t, runner, "artists", "follow", "night shapes"); err != nil {
			t.Fatalf("follow failed: %v", err)
		}
		if !strings.Contains(output.String(), "✓ Following Night Shapes") {
			t.Errorf("expected follow confirmation, got %s", output.String())
		}

		output.Reset()
		if err := runCLI(t, runner, "artists", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), "1. Night Shapes (shoegaze)") {
			t.Errorf("expected listed artist, got %s", output.String())
		}
	})

	t.Run("unfollow by name", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(t, catalog, output)

		if err := runCLI(t, runner, "artists", "follow", "night shapes"); err != nil {
			t.Fatalf("follow failed: %v", err)
		}
		if err := runCLI(t, runner, "artists", "unfollow", "Night Shapes"); err != nil {
			t.Fatalf("unfollow failed: %v", err)
		}

		output.Reset()
		if err := runCLI(t, runner, "artists", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), "No followed artists yet") {
			t.Errorf("expected empty list message, got %s", output.String())
		}
	})

	t.Run("unfollow unknown artist fails", func(t *testing.T) {
		runner := newTestRunner(t, catalog, &bytes.Buffer{})

		err := runCLI(t, runner, "artists", "unfollow", "nobody")
		if !errors.Is(err, shared.ErrArtistNotFound) {
			t.Errorf("expected ErrArtistNotFound, got %v", err)
		}
	})
}

func TestReleaseCommands(t *testing.T) {
	recent := time.Now().UTC().AddDate(0, 0, -2)
	future := time.Now().UTC().AddDate(0, 0, 14)

	catalog := &mockCatalog{
		artists: []models.Artist{{ID: "artist1", Name: "Night Shapes"}},
		catalogs: map[string][]models.CatalogEntry{
			"artist1": {
				{
					ID:          "rel1",
					Title:       "Fresh Cut",
					ReleaseDate: recent,
					Precision:   models.PrecisionDay,
					Type:        models.ReleaseSingle,
					Artists:     []models.Contributor{{ID: "artist1", Name: "Night Shapes"}},
				},
				{
					ID:          "rel2",
					Title:       "Horizon",
					ReleaseDate: future,
					Precision:   models.PrecisionDay,
					Type:        models.ReleaseAlbum,
					Artists:     []models.Contributor{{ID: "artist1", Name: "Night Shapes"}},
				},
			},
		},
	}

	t.Run("new lists recent releases", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(t, catalog, output)

		if err := runCLI(t, runner, "artists", "follow", "night shapes"); err != nil {
			t.Fatalf("follow failed: %v", err)
		}

		output.Reset()
		if err := runCLI(t, runner, "releases", "new"); err != nil {
			t.Fatalf("releases new failed: %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "New Releases (1)") {
			t.Errorf("expected one new release, got %s", got)
		}
		if !strings.Contains(got, "Night Shapes - Fresh Cut (single,") {
			t.Errorf("expected release line, got %s", got)
		}
		if strings.Contains(got, "Horizon") {
			t.Errorf("future release leaked into new window: %s", got)
		}
	})

	t.Run("upcoming lists future releases", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(t, catalog, output)

		if err := runCLI(t, runner, "artists", "follow", "night shapes"); err != nil {
			t.Fatalf("follow failed: %v", err)
		}

		output.Reset()
		if err := runCLI(t, runner, "releases", "upcoming"); err != nil {
			t.Fatalf("releases upcoming failed: %v", err)
		}

		got := output.String()
		if !strings.Contains(got, "Upcoming Releases (1)") {
			t.Errorf("expected one upcoming release, got %s", got)
		}
		if !strings.Contains(got, "Horizon") {
			t.Errorf("expected upcoming release line, got %s", got)
		}
	})

	t.Run("progress output finishes before results", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(t, catalog, output)

		if err := runCLI(t, runner, "artists", "follow", "night shapes"); err != nil {
			t.Fatalf("follow failed: %v", err)
		}

		for i := 0; i < 10; i++ {
			output.Reset()
			if err := runCLI(t, runner, "releases", "new", "--force"); err != nil {
				t.Fatalf("releases new failed: %v", err)
			}

			got := output.String()
			fetch := strings.Index(got, "📥")
			header := strings.Index(got, "New Releases (1)")
			if fetch == -1 || header == -1 {
				t.Fatalf("expected progress line and results header, got %s", got)
			}
			if fetch > header {
				t.Fatalf("progress output interleaved after results: %s", got)
			}
		}
	})

	t.Run("out of range days rejected", func(t *testing.T) {
		runner := newTestRunner(t, catalog, &bytes.Buffer{})

		for _, days := range []string{"90", "-1", "15"} {
			err := runCLI(t, runner, "releases", "new", "--days", days)
			if !errors.Is(err, shared.ErrInvalidFlag) {
				t.Errorf("--days %s: expected ErrInvalidFlag, got %v", days, err)
			}
		}
	})

	t.Run("no followed artists short-circuits", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(t, catalog, output)

		if err := runCLI(t, runner, "releases", "new"); err != nil {
			t.Fatalf("releases new failed: %v", err)
		}
		if !strings.Contains(output.String(), "No followed artists yet") {
			t.Errorf("expected guidance message, got %s", output.String())
		}
	})

	t.Run("unknown format rejected", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(t, catalog, output)

		if err := runCLI(t, runner, "artists", "follow", "night shapes"); err != nil {
			t.Fatalf("follow failed: %v", err)
		}

		err := runCLI(t, runner, "releases", "new", "--format", "yaml")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestCacheCommands(t *testing.T) {
	catalog := &mockCatalog{}

	t.Run("cleanup reports deletions", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(t, catalog, output)

		// Sub-second TTLs truncate to the current unix second, so the
		// record is already expired for the sweep.
		if err := runner.cache.Put("stale", []string{"x"}, time.Nanosecond); err != nil {
			t.Fatal(err)
		}

		if err := runCLI(t, runner, "cache", "cleanup"); err != nil {
			t.Fatalf("cleanup failed: %v", err)
		}
		if !strings.Contains(output.String(), "Removed 1 expired cache records") {
			t.Errorf("expected one deletion, got %s", output.String())
		}
	})

	t.Run("clear empties the cache", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newTestRunner(t, catalog, output)

		if err := runner.cache.Put("live", []string{"x"}, time.Hour); err != nil {
			t.Fatal(err)
		}

		if err := runCLI(t, runner, "cache", "clear"); err != nil {
			t.Fatalf("clear failed: %v", err)
		}

		if _, ok, _ := runner.cache.Get("live"); ok {
			t.Error("expected cache to be empty after clear")
		}
	})
}
