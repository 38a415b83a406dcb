// Package repositories implements SQLite-backed persistence for the
// discovery engine: the TTL key-value cache behind [CacheRepository] and the
// ordered favorites list behind [ArtistRepository].
//
// Both repositories operate on a database opened and migrated through
// internal/shared. Cache reads apply lazy expiry; cache writes are
// whole-record replacements.
package repositories
