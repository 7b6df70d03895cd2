// package tasks implements the playlist aggregation engine: pagination
// collection, normalization, and the derived analyses over playlist data.
package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
	"github.com/desertthunder/crate/internal/shared"
)

// AccessProvider supplies a currently-valid bearer token for a user.
// The engine treats it as opaque: it either returns a usable token or fails.
type AccessProvider interface {
	EnsureAccess(ctx context.Context, userID string) (string, error)
}

// Engine defines the caller-facing analysis operations over playlists.
type Engine interface {
	// Contents returns the full normalized listing of a playlist.
	Contents(ctx context.Context, userID, playlistID string) (*models.PlaylistContents, error)

	// Stats computes the aggregate report for a playlist.
	Stats(ctx context.Context, userID, playlistID string) (*models.AggregateReport, error)

	// SimulateDedupe reports duplicates without writing anything upstream.
	SimulateDedupe(ctx context.Context, userID, playlistID string) (*models.DuplicateReport, error)

	// SimulateMerge compares the identity sets of two playlists.
	SimulateMerge(ctx context.Context, userID, playlistA, playlistB string) (*models.MergeReport, error)

	// Export renders a playlist as a delimited-text document.
	Export(ctx context.Context, userID, playlistID string) (*formatter.ExportFile, error)

	// Dedupe removes every duplicate occurrence with one bulk-delete request.
	Dedupe(ctx context.Context, userID, playlistID string) (*models.DedupeResult, error)
}

// PlaylistEngine implements [Engine] against the upstream catalog.
//
// Every operation constructs its data fresh from the collector's output and
// discards it after the response: no cache, no stored history, no shared
// mutable state between concurrent requests.
type PlaylistEngine struct {
	catalog services.Catalog
	access  AccessProvider
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided catalog and access broker.
func NewPlaylistEngine(catalog services.Catalog, access AccessProvider) *PlaylistEngine {
	return &PlaylistEngine{
		catalog: catalog,
		access:  access,
	}
}

// collect folds the playlist's lazy item sequence into a slice, all-or-nothing.
func (e *PlaylistEngine) collect(ctx context.Context, token, playlistID string) ([]services.PlaylistItem, error) {
	return services.Collect(e.catalog.PlaylistItems(ctx, token, playlistID))
}

// Contents returns the full normalized listing of a playlist.
func (e *PlaylistEngine) Contents(ctx context.Context, userID, playlistID string) (*models.PlaylistContents, error) {
	token, err := e.access.EnsureAccess(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := e.collect(ctx, token, playlistID)
	if err != nil {
		return nil, err
	}

	tracks := NormalizeAll(items)
	return &models.PlaylistContents{Count: len(tracks), Tracks: tracks}, nil
}

type metaResult struct {
	playlist *services.SpotifyPlaylist
	err      error
}

// fetchMetaAsync fetches the playlist metadata record concurrently with the
// caller's own work. The two fetches are independent, so overlapping them
// mirrors the joint await at the original boundary.
func (e *PlaylistEngine) fetchMetaAsync(ctx context.Context, token, playlistID string) <-chan metaResult {
	ch := make(chan metaResult, 1)
	go func() {
		playlist, err := e.catalog.Playlist(ctx, token, playlistID)
		ch <- metaResult{playlist: playlist, err: err}
	}()
	return ch
}

// Stats computes the aggregate report for a playlist. Metadata and the full
// track listing are fetched concurrently and awaited jointly; either failure
// fails the whole operation.
func (e *PlaylistEngine) Stats(ctx context.Context, userID, playlistID string) (*models.AggregateReport, error) {
	token, err := e.access.EnsureAccess(ctx, userID)
	if err != nil {
		return nil, err
	}

	metaCh := e.fetchMetaAsync(ctx, token, playlistID)
	items, itemsErr := e.collect(ctx, token, playlistID)
	meta := <-metaCh

	if itemsErr != nil {
		return nil, itemsErr
	}
	if meta.err != nil {
		return nil, meta.err
	}

	report := Aggregate(meta.playlist, NormalizeAll(items))
	return &report, nil
}

// SimulateDedupe reports duplicates without writing anything upstream.
func (e *PlaylistEngine) SimulateDedupe(ctx context.Context, userID, playlistID string) (*models.DuplicateReport, error) {
	token, err := e.access.EnsureAccess(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := e.collect(ctx, token, playlistID)
	if err != nil {
		return nil, err
	}

	report := DetectDuplicates(NormalizeAll(items))
	return &report, nil
}

// SimulateMerge compares the identity sets of two playlists.
//
// Both ids are required up front. Fetching is expensive, so the usage error
// surfaces before any upstream call. The two listings are collected
// concurrently.
func (e *PlaylistEngine) SimulateMerge(ctx context.Context, userID, playlistA, playlistB string) (*models.MergeReport, error) {
	if playlistA == "" || playlistB == "" {
		return nil, fmt.Errorf("%w: playlist ids a and b are both required", shared.ErrMissingArgument)
	}

	token, err := e.access.EnsureAccess(ctx, userID)
	if err != nil {
		return nil, err
	}

	type collectResult struct {
		items []services.PlaylistItem
		err   error
	}

	bCh := make(chan collectResult, 1)
	go func() {
		items, err := e.collect(ctx, token, playlistB)
		bCh <- collectResult{items: items, err: err}
	}()

	itemsA, errA := e.collect(ctx, token, playlistA)
	resB := <-bCh

	if errA != nil {
		return nil, errA
	}
	if resB.err != nil {
		return nil, resB.err
	}

	report := CompareSets(playlistA, NormalizeAll(itemsA), playlistB, NormalizeAll(resB.items))
	return &report, nil
}

// Export renders a playlist as a delimited-text document with a derived
// filename. Metadata and tracks are fetched concurrently; the requesting
// user's identity follows once both are in hand.
func (e *PlaylistEngine) Export(ctx context.Context, userID, playlistID string) (*formatter.ExportFile, error) {
	token, err := e.access.EnsureAccess(ctx, userID)
	if err != nil {
		return nil, err
	}

	metaCh := e.fetchMetaAsync(ctx, token, playlistID)
	items, itemsErr := e.collect(ctx, token, playlistID)
	meta := <-metaCh

	if itemsErr != nil {
		return nil, itemsErr
	}
	if meta.err != nil {
		return nil, meta.err
	}

	user, err := e.catalog.Me(ctx, token)
	if err != nil {
		return nil, err
	}

	return formatter.ExportPlaylistCSV(items, meta.playlist, user.ID, time.Now().UTC())
}

// Dedupe removes every duplicate occurrence from the playlist with a single
// bulk-delete request, returning the removal count and the upstream snapshot
// id. When the playlist holds no duplicates, no upstream write is issued.
func (e *PlaylistEngine) Dedupe(ctx context.Context, userID, playlistID string) (*models.DedupeResult, error) {
	token, err := e.access.EnsureAccess(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := e.collect(ctx, token, playlistID)
	if err != nil {
		return nil, err
	}

	removals, removed := duplicateRemovals(items)
	if removed == 0 {
		return &models.DedupeResult{Removed: 0}, nil
	}

	snapshotID, err := e.catalog.RemoveTracks(ctx, token, playlistID, removals, "")
	if err != nil {
		return nil, err
	}

	return &models.DedupeResult{Removed: removed, SnapshotID: snapshotID}, nil
}

// duplicateRemovals builds the bulk-delete payload for every duplicate
// occurrence, grouped by track URI with one positions list per track.
// Returns the payload and the total count of positions to remove.
func duplicateRemovals(items []services.PlaylistItem) ([]services.TrackRemoval, int) {
	seen := make(map[string]struct{})
	positions := make(map[string][]int)
	var order []string

	for i, item := range items {
		if item.Track == nil || item.Track.ID == "" {
			continue
		}

		uri := item.Track.URI
		if uri == "" {
			uri = "spotify:track:" + item.Track.ID
		}

		if _, ok := seen[item.Track.ID]; !ok {
			seen[item.Track.ID] = struct{}{}
			continue
		}

		if _, ok := positions[uri]; !ok {
			order = append(order, uri)
		}
		positions[uri] = append(positions[uri], i)
	}

	removals := make([]services.TrackRemoval, 0, len(order))
	removed := 0
	for _, uri := range order {
		removals = append(removals, services.TrackRemoval{URI: uri, Positions: positions[uri]})
		removed += len(positions[uri])
	}

	return removals, removed
}
