// Package services defines the [Catalog] interface for the upstream catalog
// API and implements it for Spotify.
//
// # Catalog Interface
//
// The analysis engine never talks HTTP directly; it consumes [Catalog], which
// keeps the engine testable against in-memory doubles.
//
// # Spotify Implementation
//
// [SpotifyService] is a stateless client: every call takes the requesting
// user's bearer token, so a single instance serves concurrent requests with
// no shared mutable state.
//
// # Pagination
//
// [SpotifyService.PlaylistItems] walks the paged track listing lazily as an
// [iter.Seq2], following each page's absolute `next` URL until it is absent.
// [Collect] folds the sequence into a slice with all-or-nothing semantics:
// a failed page discards everything already gathered.
//
// # Error Handling
//
// Upstream failures map onto the shared taxonomy:
//   - 429 : [shared.RateLimitError] carrying the Retry-After duration,
//     never retried here; the caller owns retry policy
//   - other non-2xx : [shared.ErrUpstreamFailed], with no response-body detail
//   - missing token : [shared.ErrNotAuthenticated]
package services
