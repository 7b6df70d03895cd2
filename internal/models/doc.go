// Package models defines domain entities for the crate playlist analysis service.
//
// The package contains two categories of types:
//
// 1. Projection and report types, created fresh per request and never persisted:
//   - [NormalizedTrack] : Null-explicit projection of one playlist entry, shared by every analysis
//   - [PlaylistContents] : Full normalized listing of a playlist
//   - [AggregateReport] : Single-pass playlist statistics
//   - [DuplicateReport] : Result of the duplicate detection pass
//   - [MergeReport] : Set algebra between two playlists' identity sets
//   - [DedupeResult] : Outcome of the destructive dedupe write
//
// 2. Persistent entities backing the auth collaborator:
//   - [User] : Account record keyed to a catalog profile
//   - [Token] : OAuth token material for a user
//   - [Session] : Cookie-backed login session
//
// [User] implements the [Model] interface providing ID generation, timestamps,
// and validation. The [Repository] interface defines standard CRUD operations
// for database access.
package models
