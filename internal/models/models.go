// package models defines the data model for the crate playlist analysis service
package models

import (
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// ArtistRef is the compact artist projection carried by normalized tracks.
type ArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AlbumRef is the compact album projection carried by normalized tracks.
type AlbumRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
}

// NormalizedTrack is the null-explicit projection of one playlist entry.
//
// Position is the zero-based index in collection order, assigned once by the
// normalizer and never recomputed. Nullable fields are pointers so "unknown"
// serializes as JSON null rather than a zero value; keys are never omitted.
type NormalizedTrack struct {
	Position   int         `json:"position"`
	ID         *string     `json:"id"`
	Name       *string     `json:"name"`
	Artists    []ArtistRef `json:"artists"`
	Album      *AlbumRef   `json:"album"`
	Popularity *int        `json:"popularity"`
	DurationMS *int        `json:"duration_ms"`
	AddedAt    *string     `json:"added_at"`
}

// TrackSummary is the lightweight track projection attached to duplicate
// report entries: a NormalizedTrack without its positional/membership fields.
type TrackSummary struct {
	ID         *string     `json:"id"`
	Name       *string     `json:"name"`
	Artists    []ArtistRef `json:"artists"`
	Album      *AlbumRef   `json:"album"`
	Popularity *int        `json:"popularity"`
	DurationMS *int        `json:"duration_ms"`
}

// PlaylistContents is the full normalized listing of one playlist.
type PlaylistContents struct {
	Count  int               `json:"count"`
	Tracks []NormalizedTrack `json:"tracks"`
}

// PlaylistInfo is the catalog metadata block attached to aggregate reports.
type PlaylistInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Owner         string `json:"owner"`
	Public        bool   `json:"public"`
	Collaborative bool   `json:"collaborative"`
}

// ArtistCount is one entry of the frequency-ranked artist facet.
type ArtistCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ReleaseRange is the inclusive release-date extremum over a playlist,
// as UTC calendar dates (YYYY-MM-DD). Nil when no track carried a date.
type ReleaseRange struct {
	Oldest *string `json:"oldest"`
	Newest *string `json:"newest"`
}

// AggregateReport holds single-pass playlist statistics.
// Derived and ephemeral: computed per request, never persisted.
type AggregateReport struct {
	Playlist      PlaylistInfo  `json:"playlist"`
	TracksTotal   int           `json:"tracks_total"`
	TracksUnique  int           `json:"tracks_unique"`
	ArtistsUnique int           `json:"artists_unique"`
	TopArtists    []ArtistCount `json:"top_artists"`
	ReleaseRange  ReleaseRange  `json:"release_range"`
	AvgPopularity *float64      `json:"avg_popularity"`
}

// DuplicateEntry is one reported duplicate: the repeated occurrence's own
// position plus a summary of the track found there.
type DuplicateEntry struct {
	Position int          `json:"position"`
	Track    TrackSummary `json:"track"`
}

// DuplicateReport is the result of the duplicate detection pass.
//
// Sample holds at most the first 20 entries in positional order; Duplicates
// is the true total regardless of truncation.
type DuplicateReport struct {
	Total      int              `json:"total"`
	Duplicates int              `json:"duplicates"`
	Sample     []DuplicateEntry `json:"sample"`
}

// MergeSide describes one playlist's identity set within a merge simulation.
type MergeSide struct {
	ID     string `json:"id"`
	Tracks int    `json:"tracks"`
}

// MergeReport is the set comparison between two playlists' identity sets.
type MergeReport struct {
	PlaylistA         MergeSide `json:"playlist_a"`
	PlaylistB         MergeSide `json:"playlist_b"`
	UnionCount        int       `json:"union_count"`
	IntersectionCount int       `json:"intersection_count"`
	WouldAddFromBToA  int       `json:"would_add_from_b_to_a"`
}

// DedupeResult is the outcome of the destructive dedupe operation.
// SnapshotID is empty (and omitted) when no upstream write was issued.
type DedupeResult struct {
	Removed    int    `json:"removed"`
	SnapshotID string `json:"snapshot_id,omitempty"`
}

// Identity is the requesting user's catalog identity.
type Identity struct {
	ID          string `json:"id"`
	SpotifyID   string `json:"spotifyId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}
