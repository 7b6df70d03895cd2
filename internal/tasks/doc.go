// Package tasks implements the playlist aggregation engine.
//
// # Core Operations
//
// The [Engine] interface defines the read analyses and the one write:
//
//  1. [Engine.Contents] : full normalized listing
//  2. [Engine.Stats] : single-pass aggregate report (frequency-ranked
//     artists, release-date range, average popularity)
//  3. [Engine.SimulateDedupe] : duplicate detection, read-only
//  4. [Engine.SimulateMerge] : identity-set algebra between two playlists
//  5. [Engine.Export] : 16-column delimited-text rendering
//  6. [Engine.Dedupe] : detection pass followed by one bulk-delete upstream
//
// # Data Flow
//
// Collector → Normalizer → analysis. [NormalizeAll] assigns each item its
// zero-based position exactly once; [DetectDuplicates], [CompareSets] and
// [Aggregate] are pure functions over the normalized sequence, so every
// operation is deterministic for a given listing.
//
// # Consistency
//
// Operations are all-or-nothing. A failed page fetch, metadata fetch, or
// identity fetch fails the whole operation. The engine never produces a
// report over a partial listing, and it performs no internal retries.
// Independent fetches within one operation (metadata and track listing, or
// the two listings of a merge) run concurrently and are awaited jointly.
//
// # Implementation
//
// [PlaylistEngine] implements [Engine] with dependencies on:
//   - [services.Catalog] : upstream catalog client
//   - [AccessProvider] : opaque per-user token broker
package tasks
