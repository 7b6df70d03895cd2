package tasks

import (
	"math"
	"sort"
	"time"

	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/services"
)

// duplicateSampleCap bounds the sample attached to a duplicate report.
// Presentation limit only: the duplicate count is always exact.
const duplicateSampleCap = 20

// topArtistsCap bounds the frequency-ranked artist facet.
const topArtistsCap = 10

// DetectDuplicates scans a normalized sequence once, left to right,
// reporting every entry whose identifier was already seen. Entries with a
// null id are skipped entirely since they can never collide. Pure function of
// its input.
func DetectDuplicates(tracks []models.NormalizedTrack) models.DuplicateReport {
	report := models.DuplicateReport{
		Total:  len(tracks),
		Sample: []models.DuplicateEntry{},
	}

	seen := make(map[string]struct{})
	for _, track := range tracks {
		if track.ID == nil {
			continue
		}

		if _, ok := seen[*track.ID]; !ok {
			seen[*track.ID] = struct{}{}
			continue
		}

		report.Duplicates++
		if len(report.Sample) < duplicateSampleCap {
			report.Sample = append(report.Sample, models.DuplicateEntry{
				Position: track.Position,
				Track:    Summarize(track),
			})
		}
	}

	return report
}

// IdentitySet returns the set of non-null track identifiers in a normalized
// sequence. Two playlists are compared only through their identity sets.
func IdentitySet(tracks []models.NormalizedTrack) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, track := range tracks {
		if track.ID != nil {
			ids[*track.ID] = struct{}{}
		}
	}
	return ids
}

// CompareSets computes the set algebra between two playlists' identity sets:
// union size, intersection size, and how many of B's identifiers are absent
// from A.
func CompareSets(idA string, a []models.NormalizedTrack, idB string, b []models.NormalizedTrack) models.MergeReport {
	idsA := IdentitySet(a)
	idsB := IdentitySet(b)

	intersection := 0
	for id := range idsB {
		if _, ok := idsA[id]; ok {
			intersection++
		}
	}

	return models.MergeReport{
		PlaylistA:         models.MergeSide{ID: idA, Tracks: len(idsA)},
		PlaylistB:         models.MergeSide{ID: idB, Tracks: len(idsB)},
		UnionCount:        len(idsA) + len(idsB) - intersection,
		IntersectionCount: intersection,
		WouldAddFromBToA:  len(idsB) - intersection,
	}
}

// Aggregate computes playlist statistics over a single pass of the
// normalized sequence.
//
// Artist frequency counts occurrences of each artist name (not id): an
// artist on two tracks counts twice. The top-10 ranking sorts by count
// descending with ties broken by first-seen order, which requires the
// insertion-ordered bookkeeping here rather than a bare map.
func Aggregate(meta *services.SpotifyPlaylist, tracks []models.NormalizedTrack) models.AggregateReport {
	report := models.AggregateReport{
		TracksTotal: len(tracks),
		TopArtists:  []models.ArtistCount{},
	}

	if meta != nil {
		report.Playlist = models.PlaylistInfo{
			ID:            meta.ID,
			Name:          meta.Name,
			Description:   meta.Description,
			Owner:         meta.Owner.DisplayName,
			Public:        meta.Public,
			Collaborative: meta.Collaborative,
		}
	}

	seen := make(map[string]struct{})
	artistCounts := make(map[string]int)
	var artistOrder []string

	var oldest, newest time.Time
	haveRange := false

	popularitySum := 0
	popularityCount := 0

	for _, track := range tracks {
		if track.ID != nil {
			seen[*track.ID] = struct{}{}
		}

		for _, artist := range track.Artists {
			if _, ok := artistCounts[artist.Name]; !ok {
				artistOrder = append(artistOrder, artist.Name)
			}
			artistCounts[artist.Name]++
		}

		if track.Album != nil {
			if date, ok := ParseReleaseDate(track.Album.ReleaseDate); ok {
				if !haveRange || date.Before(oldest) {
					oldest = date
				}
				if !haveRange || date.After(newest) {
					newest = date
				}
				haveRange = true
			}
		}

		if track.Popularity != nil {
			popularitySum += *track.Popularity
			popularityCount++
		}
	}

	report.TracksUnique = len(seen)
	report.ArtistsUnique = len(artistCounts)

	top := make([]models.ArtistCount, 0, len(artistOrder))
	for _, name := range artistOrder {
		top = append(top, models.ArtistCount{Name: name, Count: artistCounts[name]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})
	if len(top) > topArtistsCap {
		top = top[:topArtistsCap]
	}
	report.TopArtists = top

	if haveRange {
		oldestStr := oldest.Format("2006-01-02")
		newestStr := newest.Format("2006-01-02")
		report.ReleaseRange = models.ReleaseRange{Oldest: &oldestStr, Newest: &newestStr}
	}

	if popularityCount > 0 {
		avg := math.Round(float64(popularitySum)/float64(popularityCount)*10) / 10
		report.AvgPopularity = &avg
	}

	return report
}
