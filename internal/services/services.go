// package services defines interface Catalog for interacting with the release provider's HTTP API
package services

import (
	"context"

	"github.com/desertthunder/radar/internal/models"
	"golang.org/x/oauth2"
)

// Catalog defines the read surface of an external release provider (Spotify).
type Catalog interface {
	// ArtistCatalog retrieves the artist's albums and singles as normalized
	// catalog entries. Entries with malformed data are skipped, not fatal.
	ArtistCatalog(ctx context.Context, artistID string) ([]models.CatalogEntry, error)

	// Album retrieves full detail for a single release by id.
	Album(ctx context.Context, albumID string) (*models.CatalogEntry, error)

	// SearchArtists finds artists matching a free-text query.
	SearchArtists(ctx context.Context, query string, limit int) ([]models.Artist, error)

	// Name returns the provider name (e.g. "Spotify")
	Name() string
}

// TokenSource supplies bearer credentials for outbound requests.
//
// Satisfied by [TokenProvider] and, in tests, by static sources.
type TokenSource interface {
	Token() (*oauth2.Token, error)
}
