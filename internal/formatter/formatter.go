// package formatter renders playlist listings as delimited text (CSV) with
// derived attachment filenames
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/crate/internal/services"
)

// ExportContentType is the media type of generated exports.
const ExportContentType = "text/csv; charset=utf-8"

// csvHeaders is the fixed 16-column header of every export.
var csvHeaders = []string{
	"Position",
	"Track Name",
	"Artists",
	"Album",
	"Release Date",
	"Duration (ms)",
	"Duration (mm:ss)",
	"Popularity",
	"Track ID",
	"Album ID",
	"Artist IDs",
	"Added At",
	"Added By",
	"Is Local",
	"Preview URL",
	"External URLs",
}

// ExportFile is a rendered export document ready to serve or write to disk.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportPlaylistCSV renders the playlist's raw item sequence into the fixed
// 16-column CSV document.
//
// The exporter intentionally departs from the normalizer's null-preserving
// contract: missing numeric and text fields render as empty string, a
// missing is_local renders as "false", and an explicit zero renders as "0".
// Quoting follows RFC 4180 (fields containing a comma, quote, or newline are
// wrapped in double quotes with internal quotes doubled).
func ExportPlaylistCSV(items []services.PlaylistItem, meta *services.SpotifyPlaylist, userID string, now time.Time) (*ExportFile, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, item := range items {
		if err := writer.Write(exportRow(item, i)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	playlistName := ""
	if meta != nil {
		playlistName = meta.Name
	}

	return &ExportFile{
		Filename:    ExportFilename(userID, playlistName, now),
		ContentType: ExportContentType,
		Data:        buf.Bytes(),
	}, nil
}

// exportRow renders one raw item into the 16 export columns.
func exportRow(item services.PlaylistItem, index int) []string {
	track := item.Track

	var name, releaseDate, durationMS, durationFmt, popularity string
	var trackID, albumName, albumID, previewURL, externalURL string
	var artistNames, artistIDs []string
	isLocal := item.IsLocal

	if track != nil {
		name = track.Name
		trackID = track.ID
		previewURL = track.PreviewURL
		externalURL = track.ExternalURLs["spotify"]
		isLocal = isLocal || track.IsLocal

		for _, artist := range track.Artists {
			artistNames = append(artistNames, artist.Name)
			artistIDs = append(artistIDs, artist.ID)
		}

		if track.Album != nil {
			albumName = track.Album.Name
			albumID = track.Album.ID
			releaseDate = track.Album.ReleaseDate
		}

		if track.DurationMS != nil {
			durationMS = strconv.Itoa(*track.DurationMS)
			durationFmt = FormatDurationMS(*track.DurationMS)
		}
		if track.Popularity != nil {
			popularity = strconv.Itoa(*track.Popularity)
		}
	}

	addedBy := ""
	if item.AddedBy != nil {
		addedBy = item.AddedBy.ID
	}

	return []string{
		strconv.Itoa(index + 1),
		name,
		strings.Join(artistNames, "; "),
		albumName,
		releaseDate,
		durationMS,
		durationFmt,
		popularity,
		trackID,
		albumID,
		strings.Join(artistIDs, "; "),
		item.AddedAt,
		addedBy,
		strconv.FormatBool(isLocal),
		previewURL,
		externalURL,
	}
}

// FormatDurationMS formats a millisecond duration as m:ss with the seconds
// zero-padded to two digits.
func FormatDurationMS(ms int) string {
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

var filenameStrip = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// SanitizePlaylistName reduces a playlist name to a filename-safe token:
// characters outside [A-Za-z0-9 -_] are stripped, whitespace runs collapse
// to a single underscore, and the result is truncated to 50 characters.
func SanitizePlaylistName(name string) string {
	if name == "" {
		name = "playlist"
	}

	name = filenameStrip.ReplaceAllString(name, "")
	name = whitespaceRun.ReplaceAllString(name, "_")

	if len(name) > 50 {
		name = name[:50]
	}
	return name
}

// ExportFilename derives the attachment filename
// {userID}_{sanitizedPlaylistName}_{YYYYMMDD_HHMMSS}.csv from the
// generation instant.
func ExportFilename(userID, playlistName string, now time.Time) string {
	if userID == "" {
		userID = "unknown"
	}
	timestamp := now.UTC().Format("20060102_150405")
	return fmt.Sprintf("%s_%s_%s.csv", userID, SanitizePlaylistName(playlistName), timestamp)
}
