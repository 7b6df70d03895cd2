// package services defines interface Catalog for interacting with the upstream catalog API
package services

import (
	"context"
	"iter"
)

// Catalog defines the upstream catalog operations the analysis engine
// depends on. All calls carry an opaque bearer token supplied per request
// by the auth collaborator; implementations hold no per-user state.
type Catalog interface {
	// Me retrieves the profile of the token's owner.
	Me(ctx context.Context, token string) (*SpotifyUser, error)

	// Playlist retrieves a playlist's metadata record by ID.
	Playlist(ctx context.Context, token, playlistID string) (*SpotifyPlaylist, error)

	// PlaylistItems returns a lazy sequence over every item of the playlist,
	// following pagination to completion in received order. The sequence
	// yields a non-nil error (and then stops) when any page fetch fails.
	PlaylistItems(ctx context.Context, token, playlistID string) iter.Seq2[PlaylistItem, error]

	// UserPlaylists retrieves one page of the token owner's playlists.
	UserPlaylists(ctx context.Context, token string, limit int) (*SpotifyPaginatedPlaylists, error)

	// RemoveTracks issues a single bulk-delete for the given (uri, positions)
	// pairs and returns the playlist's new snapshot ID.
	RemoveTracks(ctx context.Context, token, playlistID string, removals []TrackRemoval, snapshotID string) (string, error)
}

// Collect folds a lazy item sequence into a slice.
//
// Collection is all-or-nothing: on the first error the partial result is
// discarded and only the error is returned.
func Collect(seq iter.Seq2[PlaylistItem, error]) ([]PlaylistItem, error) {
	var items []PlaylistItem
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
