package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/desertthunder/radar/internal/models"
	"github.com/desertthunder/radar/internal/shared"
)

// ArtistRepository persists the ordered followed-artist list.
//
// Follow order is the precedence order for collaboration attribution, so
// List always returns artists sorted by their position column.
type ArtistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates an ArtistRepository over an open database.
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Follow appends an artist to the favorites list. Following an already
// followed artist updates its metadata but keeps its position.
func (r *ArtistRepository) Follow(artist models.Artist) error {
	if artist.ID == "" || artist.Name == "" {
		return fmt.Errorf("%w: artist id and name are required", shared.ErrInvalidInput)
	}

	existing, err := r.Get(artist.ID)
	if err == nil && existing != nil {
		_, err := r.db.Exec(
			"UPDATE artists SET name = ?, image_url = ?, genres = ? WHERE id = ?",
			artist.Name, artist.ImageURL, strings.Join(artist.Genres, ","), artist.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update artist: %w", err)
		}
		return nil
	}

	_, err = r.db.Exec(
		`INSERT INTO artists (id, name, image_url, genres, position)
		 VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM artists))`,
		artist.ID, artist.Name, artist.ImageURL, strings.Join(artist.Genres, ","),
	)
	if err != nil {
		return fmt.Errorf("failed to follow artist: %w", err)
	}

	return nil
}

// Unfollow removes an artist from the favorites list.
func (r *ArtistRepository) Unfollow(id string) error {
	result, err := r.db.Exec("DELETE FROM artists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to unfollow artist: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to unfollow artist: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", shared.ErrArtistNotFound, id)
	}

	return nil
}

// Get retrieves a followed artist by id.
func (r *ArtistRepository) Get(id string) (*models.Artist, error) {
	row := r.db.QueryRow("SELECT id, name, image_url, genres FROM artists WHERE id = ?", id)

	artist, err := scanArtist(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, id)
		}
		return nil, fmt.Errorf("failed to get artist: %w", err)
	}

	return artist, nil
}

// List returns all followed artists in follow order.
func (r *ArtistRepository) List() ([]models.Artist, error) {
	rows, err := r.db.Query("SELECT id, name, image_url, genres FROM artists ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", err)
	}
	defer rows.Close()

	var artists []models.Artist
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, *artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list artists: %w", err)
	}

	return artists, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanArtist(row scannable) (*models.Artist, error) {
	var artist models.Artist
	var genres string

	if err := row.Scan(&artist.ID, &artist.Name, &artist.ImageURL, &genres); err != nil {
		return nil, err
	}

	if genres != "" {
		artist.Genres = strings.Split(genres, ",")
	}

	return &artist, nil
}
