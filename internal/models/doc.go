// Package models defines the data model for the release-discovery engine.
//
// The package contains plain data types shared across the engine:
//   - [Artist] : A followed artist (read-only input to the engine)
//   - [CatalogEntry] : One release as reported by the provider, with
//     precision-normalized release dates
//   - [ClassifiedRelease] : The engine's final answer for one release,
//     denormalized for direct display
//   - [CacheRecord] : A TTL-keyed cache row with lazy expiry semantics
//
// Types here carry no behavior beyond parsing, validity checks, and JSON
// encoding; fetching, deduplication, and classification live in
// internal/services and internal/tasks.
package models
