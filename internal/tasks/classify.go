package tasks

import (
	"time"

	"github.com/desertthunder/radar/internal/models"
)

// Classify partitions an artist's deduplicated catalog entries by release
// window and resolves collaboration attribution.
//
// The full classified sequence is returned, stale entries included; the
// orchestrator filters by window when assembling an answer.
func Classify(artist models.Artist, entries []models.CatalogEntry, favorites []models.Artist, now time.Time, lookbackDays int) []models.ClassifiedRelease {
	releases := make([]models.ClassifiedRelease, 0, len(entries))

	for _, entry := range entries {
		primary, collaborators := resolvePrimary(artist, entry, favorites)

		releases = append(releases, models.ClassifiedRelease{
			PrimaryArtist: primary,
			Entry:         entry,
			Collaborators: collaborators,
			Window:        windowFor(entry.ReleaseDate, now, lookbackDays),
		})
	}

	return releases
}

// windowFor is a pure function of the release date, the query time, and the
// lookback window. Comparisons are date-only with time-of-day zeroed:
// New iff now-lookbackDays <= d <= now, Upcoming iff d >= tomorrow,
// Stale otherwise. The three partitions are exhaustive and mutually
// exclusive for any date.
func windowFor(releaseDate, now time.Time, lookbackDays int) models.WindowState {
	today := truncateDay(now)
	date := truncateDay(releaseDate)
	tomorrow := today.AddDate(0, 0, 1)
	windowStart := today.AddDate(0, 0, -lookbackDays)

	switch {
	case !date.Before(tomorrow):
		return models.WindowUpcoming
	case !date.Before(windowStart):
		return models.WindowNew
	default:
		return models.WindowStale
	}
}

func truncateDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// resolvePrimary decides which artist a release is attributed to.
//
// When several followed artists are credited on one entry, the one earliest
// in the favorites ordering wins; this index-position rule is deliberate,
// documented behavior. The remaining credited names are surfaced as
// collaborators for display.
func resolvePrimary(artist models.Artist, entry models.CatalogEntry, favorites []models.Artist) (models.Artist, []string) {
	primary := artist

	if len(entry.Artists) > 1 {
		position := make(map[string]int, len(favorites))
		for i, favorite := range favorites {
			position[favorite.ID] = i
		}

		best, found := position[primary.ID]

		for _, contributor := range entry.Artists {
			index, followed := position[contributor.ID]
			if !followed {
				continue
			}
			if !found || index < best {
				primary = favorites[index]
				best = index
				found = true
			}
		}
	}

	var collaborators []string
	for _, contributor := range entry.Artists {
		if contributor.ID != primary.ID {
			collaborators = append(collaborators, contributor.Name)
		}
	}

	return primary, collaborators
}
