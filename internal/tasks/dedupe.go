package tasks

import (
	"github.com/desertthunder/radar/internal/models"
	"github.com/desertthunder/radar/internal/shared"
)

// Dedupe collapses near-duplicate releases sharing a normalized title into
// one canonical entry per title.
//
// Within a title group the canonical entry is chosen by: singles beat
// albums; at equal type preference the more recent release date wins; full
// ties keep the first-seen entry. Result order follows the first-seen order
// of each group's first member.
func Dedupe(entries []models.CatalogEntry) []models.CatalogEntry {
	if len(entries) <= 1 {
		return entries
	}

	slot := make(map[string]int, len(entries))
	result := make([]models.CatalogEntry, 0, len(entries))

	for _, entry := range entries {
		key := shared.NormalizeTitle(entry.Title)

		i, seen := slot[key]
		if !seen {
			slot[key] = len(result)
			result = append(result, entry)
			continue
		}

		if supersedes(entry, result[i]) {
			result[i] = entry
		}
	}

	return result
}

// supersedes reports whether candidate replaces current as the canonical
// entry of its title group.
func supersedes(candidate, current models.CatalogEntry) bool {
	if candidate.Type != current.Type {
		return candidate.Type.Preferred(current.Type)
	}
	return candidate.ReleaseDate.After(current.ReleaseDate)
}
