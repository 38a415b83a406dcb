// package tasks implements the release-discovery engine.
//
// The core abstraction is DiscoveryEngine, which drives per-artist catalog
// fetches through the cache and fetcher, deduplicates and classifies the
// results, and assembles the final answer for the caller.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/radar/internal/models"
	"github.com/desertthunder/radar/internal/services"
	"github.com/desertthunder/radar/internal/shared"
)

// Cache is the durable TTL key-value collaborator. Read failures are treated
// as misses and write failures as no-ops; the cache is never fatal.
type Cache interface {
	Get(key string) (*models.CacheRecord, bool, error)
	Put(key string, payload any, ttl time.Duration) error
	Invalidate(key string) error
}

// BatchOpts configures one discovery batch.
//
// Priority batches (first interactive load) process more artists per batch
// with shorter inter-request delays, trading latency against rate-limit
// risk; background batches do the opposite. ForceRefresh bypasses cache
// reads but still writes through on completion, keeping the cache warm.
type BatchOpts struct {
	Priority     bool
	ForceRefresh bool
	Limit        int // Truncate the final answer; 0 means no limit
}

// ArtistResult is the per-artist outcome of a discovery batch. A failed
// artist contributes an empty release list and carries its error; a single
// artist failure never aborts the batch.
type ArtistResult struct {
	Artist    models.Artist
	Releases  []models.ClassifiedRelease
	FromCache bool
	Err       error
}

// DiscoveryEngine implements release discovery over a catalog provider and
// a cache. Per-artist catalog fetches run sequentially with an explicit
// inter-request delay; only album-detail enrichment fans out, on a small
// bounded pool.
type DiscoveryEngine struct {
	catalog services.Catalog
	cache   Cache
	config  shared.DiscoveryConfig
	logger  *log.Logger
	now     func() time.Time
}

// NewDiscoveryEngine creates a DiscoveryEngine with the provided collaborators.
func NewDiscoveryEngine(catalog services.Catalog, cache Cache, config shared.DiscoveryConfig, logger *log.Logger) *DiscoveryEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &DiscoveryEngine{
		catalog: catalog,
		cache:   cache,
		config:  config,
		logger:  logger,
		now:     time.Now,
	}
}

// SetLogger replaces the engine's logger, e.g. when the TUI owns the
// terminal and logs move to a file. A nil logger is ignored.
func (e *DiscoveryEngine) SetLogger(l *log.Logger) {
	if l != nil {
		e.logger = l
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *DiscoveryEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}
