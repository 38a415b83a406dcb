// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/radar/internal/models"
	"github.com/desertthunder/radar/internal/shared"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// catalogPageSize is the provider's maximum page size for album listings.
	catalogPageSize = 50

	// maxCatalogPages bounds the per-artist listing cost for one batch.
	maxCatalogPages = 2
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Genres []string       `json:"genres"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyAlbum represents a Spotify album or single, simplified or full.
type SpotifyAlbum struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	AlbumType            string          `json:"album_type"`  // album, single, compilation
	AlbumGroup           string          `json:"album_group"` // only present on artist listings
	Artists              []SpotifyArtist `json:"artists"`
	ReleaseDate          string          `json:"release_date"`
	ReleaseDatePrecision string          `json:"release_date_precision"`
	TotalTracks          int             `json:"total_tracks"`
	ExternalURLs         externalURLs    `json:"external_urls"`
	Images               []SpotifyImage  `json:"images"`
	URI                  string          `json:"uri"`
}

// SpotifyPaginatedAlbums represents a paginated response of albums.
type SpotifyPaginatedAlbums struct {
	Items    []SpotifyAlbum `json:"items"`
	Total    int            `json:"total"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
}

type artistSearchResult struct {
	Artists struct {
		Items []SpotifyArtist `json:"items"`
	} `json:"artists"`
}

// SpotifyService implements the Catalog interface over the Spotify Web API.
// All requests go through the rate-limited [Fetcher].
type SpotifyService struct {
	baseURL string
	fetcher *Fetcher
	logger  *log.Logger
}

// NewSpotifyService creates a Spotify catalog client.
//
// baseURL defaults to the public API; tests point it at a local server.
func NewSpotifyService(fetcher *Fetcher, baseURL string, logger *log.Logger) *SpotifyService {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &SpotifyService{
		baseURL: baseURL,
		fetcher: fetcher,
		logger:  logger,
	}
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated GET against the Spotify API and
// decodes the JSON response into result.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.fetcher.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: status 404", shared.ErrArtistNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ArtistCatalog retrieves the artist's albums and singles, newest pages
// first, mapped to normalized catalog entries.
//
// Listing pages are capped at maxCatalogPages to bound per-batch cost.
// Entries that fail to normalize are skipped and logged, never fatal.
func (s *SpotifyService) ArtistCatalog(ctx context.Context, artistID string) ([]models.CatalogEntry, error) {
	if artistID == "" {
		return nil, fmt.Errorf("%w: artist id", shared.ErrMissingArgument)
	}

	var entries []models.CatalogEntry
	offset := 0

	for page := 0; page < maxCatalogPages; page++ {
		endpoint := fmt.Sprintf("/artists/%s/albums?include_groups=album,single&limit=%d&offset=%d",
			url.PathEscape(artistID), catalogPageSize, offset)

		var response SpotifyPaginatedAlbums
		if err := s.doRequest(ctx, endpoint, &response); err != nil {
			return nil, err
		}

		for _, album := range response.Items {
			entry, err := mapAlbum(album)
			if err != nil {
				s.logger.Warnf("skipping malformed entry for artist %s: %v", artistID, err)
				continue
			}
			entries = append(entries, entry)
		}

		if response.Next == nil {
			break
		}
		offset += catalogPageSize
	}

	return entries, nil
}

// Album retrieves full detail for a single release by id.
func (s *SpotifyService) Album(ctx context.Context, albumID string) (*models.CatalogEntry, error) {
	if albumID == "" {
		return nil, fmt.Errorf("%w: album id", shared.ErrMissingArgument)
	}

	var album SpotifyAlbum
	endpoint := fmt.Sprintf("/albums/%s", url.PathEscape(albumID))
	if err := s.doRequest(ctx, endpoint, &album); err != nil {
		return nil, err
	}

	entry, err := mapAlbum(album)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// SearchArtists finds artists matching a free-text query.
func (s *SpotifyService) SearchArtists(ctx context.Context, query string, limit int) ([]models.Artist, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/search?q=%s&type=artist&limit=%d", url.QueryEscape(query), limit)

	var response artistSearchResult
	if err := s.doRequest(ctx, endpoint, &response); err != nil {
		return nil, err
	}

	artists := make([]models.Artist, 0, len(response.Artists.Items))
	for _, item := range response.Artists.Items {
		artists = append(artists, models.Artist{
			ID:       item.ID,
			Name:     item.Name,
			ImageURL: firstImageURL(item.Images),
			Genres:   item.Genres,
		})
	}

	return artists, nil
}

var _ Catalog = (*SpotifyService)(nil)

// mapAlbum normalizes a provider album into a catalog entry.
//
// Missing ids and unparseable dates are malformed data: the caller skips the
// single entry and keeps its siblings.
func mapAlbum(album SpotifyAlbum) (models.CatalogEntry, error) {
	if album.ID == "" {
		return models.CatalogEntry{}, fmt.Errorf("%w: missing album id", shared.ErrMalformedData)
	}
	if album.Name == "" {
		return models.CatalogEntry{}, fmt.Errorf("%w: missing title on %s", shared.ErrMalformedData, album.ID)
	}

	date, precision, err := models.ParseReleaseDate(album.ReleaseDate, models.DatePrecision(album.ReleaseDatePrecision))
	if err != nil {
		return models.CatalogEntry{}, fmt.Errorf("%w: %v", shared.ErrMalformedData, err)
	}

	releaseType := models.ReleaseAlbum
	if album.AlbumType == "single" {
		releaseType = models.ReleaseSingle
	}

	contributors := make([]models.Contributor, 0, len(album.Artists))
	for _, artist := range album.Artists {
		contributors = append(contributors, models.Contributor{ID: artist.ID, Name: artist.Name})
	}

	return models.CatalogEntry{
		ID:          album.ID,
		Title:       album.Name,
		ReleaseDate: date,
		Precision:   precision,
		Type:        releaseType,
		TrackCount:  album.TotalTracks,
		Artists:     contributors,
		URL:         album.ExternalURLs.Spotify,
		ImageURL:    firstImageURL(album.Images),
	}, nil
}

func firstImageURL(images []SpotifyImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
