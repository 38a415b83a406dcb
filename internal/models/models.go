package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Artist represents a followed artist.
//
// Owned by the favorites store; the discovery engine treats it as read-only
// input. The order of artists in a favorites list is significant: it decides
// primary attribution for collaborations.
type Artist struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ImageURL string   `json:"image_url,omitempty"`
	Genres   []string `json:"genres,omitempty"`
}

// ReleaseType distinguishes singles from albums.
type ReleaseType string

const (
	ReleaseSingle ReleaseType = "single"
	ReleaseAlbum  ReleaseType = "album"
)

// rank orders release types for deduplication: singles beat albums.
func (t ReleaseType) rank() int {
	if t == ReleaseSingle {
		return 0
	}
	return 1
}

// Preferred reports whether t wins a dedupe tie-break against other.
func (t ReleaseType) Preferred(other ReleaseType) bool {
	return t.rank() < other.rank()
}

// DatePrecision is the granularity the provider reported a release date at.
type DatePrecision string

const (
	PrecisionDay   DatePrecision = "day"
	PrecisionMonth DatePrecision = "month"
	PrecisionYear  DatePrecision = "year"
)

// Contributor is one artist credited on a catalog entry.
type Contributor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CatalogEntry is one release (single or album) as reported by the external
// provider. Immutable once fetched.
//
// ReleaseDate is normalized: month- and year-precision dates are pinned to
// the first day of the month/year so ordering and window checks stay
// well-defined. This is a documented approximation.
type CatalogEntry struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	ReleaseDate time.Time     `json:"release_date"`
	Precision   DatePrecision `json:"precision"`
	Type        ReleaseType   `json:"type"`
	TrackCount  int           `json:"track_count"`
	Artists     []Contributor `json:"artists"` // ordered, primary first
	URL         string        `json:"url,omitempty"`
	ImageURL    string        `json:"image_url,omitempty"`
}

// DateString renders the release date at its reported precision.
func (e CatalogEntry) DateString() string {
	switch e.Precision {
	case PrecisionMonth:
		return e.ReleaseDate.Format("2006-01")
	case PrecisionYear:
		return e.ReleaseDate.Format("2006")
	default:
		return e.ReleaseDate.Format("2006-01-02")
	}
}

// ParseReleaseDate parses a provider release date at the reported precision.
//
// Accepted forms are "2006-01-02" (day), "2006-01" (month), and "2006"
// (year). When precision is empty it is inferred from the value's shape.
func ParseReleaseDate(value string, precision DatePrecision) (time.Time, DatePrecision, error) {
	if precision == "" {
		switch len(value) {
		case len("2006-01-02"):
			precision = PrecisionDay
		case len("2006-01"):
			precision = PrecisionMonth
		case len("2006"):
			precision = PrecisionYear
		default:
			return time.Time{}, "", fmt.Errorf("unrecognized release date %q", value)
		}
	}

	var layout string
	switch precision {
	case PrecisionDay:
		layout = "2006-01-02"
	case PrecisionMonth:
		layout = "2006-01"
	case PrecisionYear:
		layout = "2006"
	default:
		return time.Time{}, "", fmt.Errorf("unknown date precision %q", precision)
	}

	date, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("unparseable release date %q: %w", value, err)
	}

	return date, precision, nil
}

// WindowState partitions releases relative to the query window.
type WindowState int

const (
	WindowNew WindowState = iota
	WindowUpcoming
	WindowStale
)

func (w WindowState) String() string {
	switch w {
	case WindowNew:
		return "new"
	case WindowUpcoming:
		return "upcoming"
	case WindowStale:
		return "stale"
	default:
		return ""
	}
}

// MarshalJSON encodes the window state as its string name.
func (w WindowState) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

// UnmarshalJSON decodes a window state from its string name.
func (w *WindowState) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "new":
		*w = WindowNew
	case "upcoming":
		*w = WindowUpcoming
	case "stale":
		*w = WindowStale
	default:
		return fmt.Errorf("unknown window state %q", s)
	}
	return nil
}

// ClassifiedRelease is the engine's final per-release answer. Never mutated
// after creation.
//
// Collaborators holds the display names of contributing artists other than
// the primary, in the entry's credit order. The struct carries enough
// denormalized data for direct display without further lookups.
type ClassifiedRelease struct {
	PrimaryArtist Artist       `json:"primary_artist"`
	Entry         CatalogEntry `json:"entry"`
	Collaborators []string     `json:"collaborators,omitempty"`
	Window        WindowState  `json:"window"`
}

// CacheRecord is one TTL-keyed cache row. Payload is the JSON encoding of a
// []CatalogEntry or []ClassifiedRelease depending on the key's request shape.
type CacheRecord struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	StoredAt  time.Time       `json:"stored_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Valid reports whether the record is still live at now. Invariant:
// StoredAt <= ExpiresAt; a record is valid iff now < ExpiresAt.
func (r *CacheRecord) Valid(now time.Time) bool {
	return now.Before(r.ExpiresAt)
}
