// Package services implements the outbound HTTP surface of the discovery
// engine: credential exchange, rate-limited fetching, and the Spotify
// catalog client.
//
// # Layers
//
//   - [TokenProvider] : client-credentials bearer token, cached and refreshed
//     ahead of expiry with a safety margin. Concurrent callers share one
//     in-flight exchange.
//   - [Fetcher] : authenticated HTTP with proactive pacing (token bucket)
//     and reactive retry/backoff on 429/502/503 honoring Retry-After hints.
//     Exhausted retries surface [shared.ErrRateLimited]; non-retryable 4xx
//     responses are returned to the caller as-is for policy decisions
//     upstream.
//   - [SpotifyService] : catalog listing, album detail, and artist search,
//     mapped onto [models.CatalogEntry] / [models.Artist]. Entries with
//     unparseable dates or missing ids are skipped individually.
//
// All blocking operations take a [context.Context]; backoff sleeps and
// pacing waits are interrupted promptly on cancellation.
package services
