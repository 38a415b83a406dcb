package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/radar/internal/models"
	"github.com/desertthunder/radar/internal/shared"
)

// CacheRepository is the durable key-value store behind the catalog cache.
//
// Records are whole-row replacements: a put overwrites any existing record
// for the key, so readers never observe a record assembled from two fetch
// generations. Expiry is lazy: an expired record behaves as absent on read
// and is only removed by an explicit Cleanup pass.
type CacheRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewCacheRepository creates a CacheRepository over an open database.
func NewCacheRepository(db *sql.DB) *CacheRepository {
	return &CacheRepository{db: db, now: time.Now}
}

// Get retrieves a live record by key. The second return is false when the
// key is absent or the record has expired; Get never returns stale data.
func (r *CacheRepository) Get(key string) (*models.CacheRecord, bool, error) {
	var payload string
	var storedAt, expiresAt int64

	row := r.db.QueryRow("SELECT payload, stored_at, expires_at FROM cache_records WHERE key = ?", key)
	if err := row.Scan(&payload, &storedAt, &expiresAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: read %s: %v", shared.ErrCache, key, err)
	}

	record := &models.CacheRecord{
		Key:       key,
		Payload:   json.RawMessage(payload),
		StoredAt:  time.Unix(storedAt, 0).UTC(),
		ExpiresAt: time.Unix(expiresAt, 0).UTC(),
	}

	if !record.Valid(r.now()) {
		return nil, false, nil
	}

	return record, true, nil
}

// Put stores payload under key with the given TTL, replacing any existing record.
func (r *CacheRepository) Put(key string, payload any, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w: non-positive TTL for %s", shared.ErrCache, key)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", shared.ErrCache, key, err)
	}

	storedAt := r.now()
	expiresAt := storedAt.Add(ttl)

	_, err = r.db.Exec(
		"INSERT OR REPLACE INTO cache_records (key, payload, stored_at, expires_at) VALUES (?, ?, ?, ?)",
		key, string(data), storedAt.Unix(), expiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: write %s: %v", shared.ErrCache, key, err)
	}

	return nil
}

// Invalidate removes the record for key, if any.
func (r *CacheRepository) Invalidate(key string) error {
	if _, err := r.db.Exec("DELETE FROM cache_records WHERE key = ?", key); err != nil {
		return fmt.Errorf("%w: invalidate %s: %v", shared.ErrCache, key, err)
	}
	return nil
}

// Cleanup removes all expired records and returns how many were deleted.
// This is the only path that sweeps expired rows.
func (r *CacheRepository) Cleanup() (int64, error) {
	result, err := r.db.Exec("DELETE FROM cache_records WHERE expires_at <= ?", r.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("%w: cleanup: %v", shared.ErrCache, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: cleanup: %v", shared.ErrCache, err)
	}

	return deleted, nil
}

// Clear removes every record regardless of expiry.
func (r *CacheRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM cache_records"); err != nil {
		return fmt.Errorf("%w: clear: %v", shared.ErrCache, err)
	}
	return nil
}
