package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/desertthunder/radar/internal/models"
	"github.com/desertthunder/radar/internal/shared"
	"golang.org/x/sync/errgroup"
)

// detailPoolSize bounds concurrent album-detail fetches. Detail calls are
// lower-volume and less rate-sensitive than catalog listings, which stay
// strictly sequential.
const detailPoolSize = 3

// FindNewReleases returns releases by the followed artists whose release
// date falls within the trailing lookback window, most recent first.
//
// Only an authentication failure aborts the batch; any other per-artist
// failure degrades that artist's contribution to an empty list. An empty
// answer is a valid answer, not an error.
func (e *DiscoveryEngine) FindNewReleases(ctx context.Context, progress chan<- ProgressUpdate, favorites []models.Artist, lookbackDays int, opts BatchOpts) ([]models.ClassifiedRelease, error) {
	if lookbackDays <= 0 {
		lookbackDays = e.config.LookbackDays
	}

	key := answerKey("new", favorites, lookbackDays)
	if cached, ok := e.cachedAnswer(key, opts); ok {
		e.sendProgress(progress, answerCachedUpdate(len(cached)))
		return cached, nil
	}

	classified, err := e.discover(ctx, progress, favorites, lookbackDays, opts)
	if err != nil {
		return nil, err
	}

	fresh := filterWindow(classified, models.WindowNew)
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Entry.ReleaseDate.After(fresh[j].Entry.ReleaseDate)
	})
	fresh = truncate(fresh, opts.Limit)

	e.sendProgress(progress, mergedUpdate(len(fresh), fresh))
	e.storeAnswer(ctx, key, fresh, e.config.CatalogTTL())

	return fresh, nil
}

// FindUpcomingReleases returns releases by the followed artists dated
// tomorrow or later, soonest first, enriched with full album detail on a
// small bounded pool.
func (e *DiscoveryEngine) FindUpcomingReleases(ctx context.Context, progress chan<- ProgressUpdate, favorites []models.Artist, limit int, opts BatchOpts) ([]models.ClassifiedRelease, error) {
	opts.Limit = limit

	key := answerKey("upcoming", favorites, limit)
	if cached, ok := e.cachedAnswer(key, opts); ok {
		e.sendProgress(progress, answerCachedUpdate(len(cached)))
		return cached, nil
	}

	classified, err := e.discover(ctx, progress, favorites, e.config.LookbackDays, opts)
	if err != nil {
		return nil, err
	}

	upcoming := filterWindow(classified, models.WindowUpcoming)
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Entry.ReleaseDate.Before(upcoming[j].Entry.ReleaseDate)
	})
	upcoming = truncate(upcoming, limit)

	e.enrichDetails(ctx, progress, upcoming)

	e.sendProgress(progress, mergedUpdate(len(upcoming), upcoming))
	e.storeAnswer(ctx, key, upcoming, e.config.UpcomingTTL())

	return upcoming, nil
}

// discover runs the per-artist pipeline: cache consult, sequential paced
// fetch, dedupe, classify, merge. Cancellation stops the loop promptly and
// returns whatever artists completed.
func (e *DiscoveryEngine) discover(ctx context.Context, progress chan<- ProgressUpdate, favorites []models.Artist, lookbackDays int, opts BatchOpts) ([]models.ClassifiedRelease, error) {
	batch := favorites
	if max := e.config.MaxArtists(opts.Priority); max > 0 && len(batch) > max {
		batch = batch[:max]
	}

	logger := shared.WithLogger(e.logger, "batch", shared.GenerateID(), "priority", opts.Priority)
	delay := e.config.Delay(opts.Priority)
	total := len(batch)

	var merged []models.ClassifiedRelease

	for i, artist := range batch {
		if ctx.Err() != nil {
			logger.Warnf("batch cancelled after %d/%d artists", i, total)
			break
		}

		if i > 0 && delay > 0 {
			if !sleep(ctx, delay) {
				logger.Warnf("batch cancelled after %d/%d artists", i, total)
				break
			}
		}

		result := e.processArtist(ctx, progress, artist, favorites, lookbackDays, opts, i+1, total)
		if result.Err != nil {
			if errors.Is(result.Err, shared.ErrAuthFailed) {
				return nil, result.Err
			}
			logger.Warnf("artist %s degraded to empty contribution: %v", artist.ID, result.Err)
			continue
		}

		merged = append(merged, result.Releases...)
	}

	return dedupeAcrossArtists(merged), nil
}

// processArtist walks one artist through the fetch/dedupe/classify pipeline.
func (e *DiscoveryEngine) processArtist(ctx context.Context, progress chan<- ProgressUpdate, artist models.Artist, favorites []models.Artist, lookbackDays int, opts BatchOpts, step, total int) ArtistResult {
	entries, fromCache, err := e.artistCatalog(ctx, artist, opts.ForceRefresh)
	if err != nil {
		e.sendProgress(progress, artistFailedUpdate(step, total, artist, err))
		return ArtistResult{Artist: artist, Err: err}
	}

	if fromCache {
		e.sendProgress(progress, cacheHitUpdate(step, total, artist))
	} else {
		e.sendProgress(progress, fetchCatalogUpdate(step, total, artist))
	}

	deduped := Dedupe(entries)
	classified := Classify(artist, deduped, favorites, e.now(), lookbackDays)
	e.sendProgress(progress, classifiedUpdate(step, total, artist, len(classified)))

	return ArtistResult{Artist: artist, Releases: classified, FromCache: fromCache}
}

// artistCatalog consults the cache before the network. Cache read failures
// degrade to misses and write failures to no-ops.
func (e *DiscoveryEngine) artistCatalog(ctx context.Context, artist models.Artist, forceRefresh bool) ([]models.CatalogEntry, bool, error) {
	key := catalogKey(artist.ID)

	if !forceRefresh {
		record, ok, err := e.cache.Get(key)
		if err != nil {
			e.logger.Warnf("cache read for %s treated as miss: %v", key, err)
		} else if ok {
			var entries []models.CatalogEntry
			if err := json.Unmarshal(record.Payload, &entries); err == nil {
				return entries, true, nil
			}
			e.logger.Warnf("cache payload for %s undecodable, refetching", key)
		}
	}

	entries, err := e.catalog.ArtistCatalog(ctx, artist.ID)
	if err != nil {
		return nil, false, err
	}

	if err := e.cache.Put(key, entries, e.config.CatalogTTL()); err != nil {
		e.logger.Warnf("cache write for %s skipped: %v", key, err)
	}

	return entries, false, nil
}

// enrichDetails fills in full album metadata for the answer's entries on a
// bounded pool. Enrichment failures keep the simplified entry.
func (e *DiscoveryEngine) enrichDetails(ctx context.Context, progress chan<- ProgressUpdate, releases []models.ClassifiedRelease) {
	if len(releases) == 0 || ctx.Err() != nil {
		return
	}

	e.sendProgress(progress, enrichUpdate(len(releases)))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(detailPoolSize)

	for i := range releases {
		group.Go(func() error {
			detail, err := e.catalog.Album(groupCtx, releases[i].Entry.ID)
			if err != nil {
				e.logger.Debugf("detail fetch for %s skipped: %v", releases[i].Entry.ID, err)
				return nil
			}
			releases[i].Entry = mergeDetail(releases[i].Entry, *detail)
			return nil
		})
	}

	group.Wait()
}

// mergeDetail overlays detail fields onto a simplified listing entry,
// keeping the listing's identity.
func mergeDetail(entry, detail models.CatalogEntry) models.CatalogEntry {
	if detail.TrackCount > 0 {
		entry.TrackCount = detail.TrackCount
	}
	if entry.ImageURL == "" {
		entry.ImageURL = detail.ImageURL
	}
	if entry.URL == "" {
		entry.URL = detail.URL
	}
	return entry
}

// cachedAnswer reads a previously assembled answer unless the caller forced
// a refresh.
func (e *DiscoveryEngine) cachedAnswer(key string, opts BatchOpts) ([]models.ClassifiedRelease, bool) {
	if opts.ForceRefresh {
		return nil, false
	}

	record, ok, err := e.cache.Get(key)
	if err != nil {
		e.logger.Warnf("cache read for %s treated as miss: %v", key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var releases []models.ClassifiedRelease
	if err := json.Unmarshal(record.Payload, &releases); err != nil {
		e.logger.Warnf("cache payload for %s undecodable: %v", key, err)
		return nil, false
	}

	return releases, true
}

// storeAnswer writes an assembled answer through the cache. A cancelled
// batch is partial and is never cached.
func (e *DiscoveryEngine) storeAnswer(ctx context.Context, key string, releases []models.ClassifiedRelease, ttl time.Duration) {
	if ctx.Err() != nil {
		return
	}

	if err := e.cache.Put(key, releases, ttl); err != nil {
		e.logger.Warnf("cache write for %s skipped: %v", key, err)
	}
}

// dedupeAcrossArtists drops duplicate entry ids from the merged sequence.
// A collaboration surfaces in every credited artist's catalog; attribution
// already resolved to one primary, so the first occurrence wins.
func dedupeAcrossArtists(releases []models.ClassifiedRelease) []models.ClassifiedRelease {
	if len(releases) <= 1 {
		return releases
	}

	seen := make(map[string]bool, len(releases))
	result := releases[:0]

	for _, release := range releases {
		if seen[release.Entry.ID] {
			continue
		}
		seen[release.Entry.ID] = true
		result = append(result, release)
	}

	return result
}

func filterWindow(releases []models.ClassifiedRelease, window models.WindowState) []models.ClassifiedRelease {
	var result []models.ClassifiedRelease
	for _, release := range releases {
		if release.Window == window {
			result = append(result, release)
		}
	}
	return result
}

func truncate(releases []models.ClassifiedRelease, limit int) []models.ClassifiedRelease {
	if limit > 0 && len(releases) > limit {
		return releases[:limit]
	}
	return releases
}

// catalogKey names a cached per-artist catalog page by request shape.
func catalogKey(artistID string) string {
	return "catalog:v1:album,single:" + artistID
}

// answerKey names a cached assembled answer by request shape.
func answerKey(shape string, favorites []models.Artist, param int) string {
	ids := make([]string, 0, len(favorites))
	for _, artist := range favorites {
		ids = append(ids, artist.ID)
	}
	return fmt.Sprintf("%s:v1:%s:%d", shape, strings.Join(ids, ","), param)
}

// sleep waits for the duration or until the context is cancelled, reporting
// whether the full wait completed.
func sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(duration):
		return true
	}
}
