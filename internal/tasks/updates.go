package tasks

import (
	"fmt"

	"github.com/desertthunder/radar/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	CacheLookup Phase = iota
	FetchCatalog
	ClassifyReleases
	EnrichDetails
	MergeResults
)

func (p Phase) String() string {
	switch p {
	case CacheLookup:
		return "cache_lookup"
	case FetchCatalog:
		return "fetch_catalog"
	case ClassifyReleases:
		return "classify"
	case EnrichDetails:
		return "enrich_details"
	case MergeResults:
		return "merge"
	default:
		return ""
	}
}

func cacheHitUpdate(step, total int, artist models.Artist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheLookup,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: catalog from cache", step, total, artist.Name),
	}
}

func answerCachedUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheLookup,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Answer served from cache (%d releases)", count),
	}
}

func fetchCatalogUpdate(step, total int, artist models.Artist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCatalog,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching catalog: %s", step, total, artist.Name),
	}
}

func artistFailedUpdate(step, total int, artist models.Artist, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCatalog,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, artist.Name, err),
	}
}

func classifiedUpdate(step, total int, artist models.Artist, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClassifyReleases,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %d releases classified", step, total, artist.Name, count),
	}
}

func enrichUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichDetails,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Enriching %d upcoming releases...", count),
	}
}

func mergedUpdate(count int, releases []models.ClassifiedRelease) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MergeResults,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Merged %d releases", count),
		Data:    releases,
	}
}
