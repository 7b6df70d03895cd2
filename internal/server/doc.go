// Package server provides HTTP routing, middleware, and handlers for the playlist analysis service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method-qualified patterns.
//
// # Middleware Stack
//
// The serve command composes [Recover], [RequestLogger], and [RateLimit] on
// every route, and [RequireSession] on the authenticated route groups.
// Rate limiting is a process-wide token bucket answering excess requests with
// 429 and the remaining window in retry_after.
//
// # Handlers
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// [AuthHandler] runs the OAuth authorization code flow and issues session cookies.
// [MeHandler] serves the caller's identity and playlist listing.
// [PlaylistHandler] serves the analysis operations (contents, stats, dedupe
// and merge simulations, CSV export, and the destructive dedupe write).
//
// # Error Envelope
//
// Every endpoint answers failures with a JSON body {"error": code}: auth
// failures are "unauthorized" (401), missing query parameters are
// "query_required" (400), upstream throttling is "rate_limited" (429) with a
// retry_after field in seconds, and other upstream failures are
// "spotify_failed" (502).
package server
