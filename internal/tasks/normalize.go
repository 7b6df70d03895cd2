package tasks

import (
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
)

// Normalize maps one raw playlist item at its collection position into the
// compact projection used by every downstream analysis.
//
// Total function: any well-formed-but-sparse item yields a valid track. A
// missing embedded track leaves every track-derived field null while
// position and added_at stay populated from the envelope. Numeric fields
// stay null when unknown, never coerced to zero.
func Normalize(item services.PlaylistItem, position int) models.NormalizedTrack {
	track := models.NormalizedTrack{
		Position: position,
		Artists:  []models.ArtistRef{},
	}

	if item.AddedAt != "" {
		addedAt := item.AddedAt
		track.AddedAt = &addedAt
	}

	t := item.Track
	if t == nil {
		return track
	}

	if t.ID != "" {
		id := t.ID
		track.ID = &id
	}
	if t.Name != "" {
		name := t.Name
		track.Name = &name
	}

	for _, artist := range t.Artists {
		track.Artists = append(track.Artists, models.ArtistRef{ID: artist.ID, Name: artist.Name})
	}

	if t.Album != nil {
		track.Album = &models.AlbumRef{
			ID:          t.Album.ID,
			Name:        t.Album.Name,
			ReleaseDate: t.Album.ReleaseDate,
		}
	}

	if t.Popularity != nil {
		popularity := *t.Popularity
		track.Popularity = &popularity
	}
	if t.DurationMS != nil {
		duration := *t.DurationMS
		track.DurationMS = &duration
	}

	return track
}

// NormalizeAll maps a raw item sequence into normalized tracks, assigning
// positions from collection order. Positions are assigned exactly once here.
func NormalizeAll(items []services.PlaylistItem) []models.NormalizedTrack {
	tracks := make([]models.NormalizedTrack, len(items))
	for i, item := range items {
		tracks[i] = Normalize(item, i)
	}
	return tracks
}

// Summarize projects a normalized track into the lightweight summary
// attached to duplicate report entries.
func Summarize(track models.NormalizedTrack) models.TrackSummary {
	return models.TrackSummary{
		ID:         track.ID,
		Name:       track.Name,
		Artists:    track.Artists,
		Album:      track.Album,
		Popularity: track.Popularity,
		DurationMS: track.DurationMS,
	}
}

// releaseDateLayouts are the precisions the catalog emits for album release
// dates. A bare year parses to January 1 of that year; a year-month to the
// first of that month.
var releaseDateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// ParseReleaseDate parses a catalog release date at any of its precisions
// into a UTC calendar date. ok is false for empty or unparseable input.
func ParseReleaseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}

	for _, layout := range releaseDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
