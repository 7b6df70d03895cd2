package formatter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/crate/internal/services"
)

func ptr[T any](v T) *T { return &v }

func TestExportPlaylistCSV(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)

	t.Run("Column Layout", func(t *testing.T) {
		items := []services.PlaylistItem{
			{
				AddedAt: "2024-01-02T03:04:05Z",
				AddedBy: &services.AddedBy{ID: "adder"},
				Track: &services.SpotifyTrack{
					ID:   "t1",
					Name: "Song",
					Artists: []services.SpotifyArtist{
						{ID: "a1", Name: "First"},
						{ID: "a2", Name: "Second"},
					},
					Album:        &services.SpotifyAlbum{ID: "al1", Name: "Album", ReleaseDate: "2020-06-15"},
					Popularity:   ptr(73),
					DurationMS:   ptr(213000),
					PreviewURL:   "https://p.example/t1",
					ExternalURLs: map[string]string{"spotify": "https://open.example/t1"},
				},
			},
		}

		file, err := ExportPlaylistCSV(items, &services.SpotifyPlaylist{Name: "Mix"}, "user1", now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
		if err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected header plus 1 row, got %d records", len(records))
		}
		if len(records[0]) != 16 {
			t.Fatalf("expected 16 columns, got %d", len(records[0]))
		}

		row := records[1]
		want := []string{
			"1", "Song", "First; Second", "Album", "2020-06-15",
			"213000", "3:33", "73", "t1", "al1", "a1; a2",
			"2024-01-02T03:04:05Z", "adder", "false",
			"https://p.example/t1", "https://open.example/t1",
		}
		for i, field := range want {
			if row[i] != field {
				t.Errorf("column %d (%s): expected %q, got %q", i, records[0][i], field, row[i])
			}
		}
	})

	t.Run("Missing Track Coerces To Empty", func(t *testing.T) {
		items := []services.PlaylistItem{{AddedAt: "2024-01-01T00:00:00Z"}}

		file, err := ExportPlaylistCSV(items, nil, "user1", now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		records, _ := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
		row := records[1]
		if row[1] != "" || row[5] != "" || row[7] != "" {
			t.Errorf("expected empty coercion, got %v", row)
		}
		if row[13] != "false" {
			t.Errorf("expected is_local default false, got %q", row[13])
		}
	})

	t.Run("Explicit Zero Renders As Zero", func(t *testing.T) {
		items := []services.PlaylistItem{
			{Track: &services.SpotifyTrack{ID: "t1", Popularity: ptr(0), DurationMS: ptr(0)}},
		}

		file, err := ExportPlaylistCSV(items, nil, "user1", now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		records, _ := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
		row := records[1]
		if row[5] != "0" || row[7] != "0" {
			t.Errorf("expected explicit zeros, got duration=%q popularity=%q", row[5], row[7])
		}
		if row[6] != "0:00" {
			t.Errorf("expected 0:00, got %q", row[6])
		}
	})

	t.Run("Quoting Round Trips Awkward Fields", func(t *testing.T) {
		name := "Hello, \"World\"\nSecond Line"
		items := []services.PlaylistItem{
			{Track: &services.SpotifyTrack{ID: "t1", Name: name}},
		}

		file, err := ExportPlaylistCSV(items, nil, "user1", now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
		if err != nil {
			t.Fatalf("failed to parse output: %v", err)
		}
		if records[1][1] != name {
			t.Errorf("expected field to round trip, got %q", records[1][1])
		}
	})

	t.Run("Local Flag From Envelope", func(t *testing.T) {
		items := []services.PlaylistItem{
			{IsLocal: true, Track: &services.SpotifyTrack{ID: "t1"}},
		}

		file, err := ExportPlaylistCSV(items, nil, "user1", now)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		records, _ := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
		if records[1][13] != "true" {
			t.Errorf("expected is_local true, got %q", records[1][13])
		}
	})
}

func TestFormatDurationMS(t *testing.T) {
	tc := []struct {
		ms   int
		want string
	}{
		{0, "0:00"},
		{999, "0:00"},
		{60000, "1:00"},
		{213000, "3:33"},
		{3599999, "59:59"},
		{3600000, "60:00"},
	}

	for _, c := range tc {
		if got := FormatDurationMS(c.ms); got != c.want {
			t.Errorf("FormatDurationMS(%d): expected %q, got %q", c.ms, c.want, got)
		}
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)

	t.Run("Derived Shape", func(t *testing.T) {
		got := ExportFilename("user1", "Road Trip", now)
		if got != "user1_Road_Trip_20240301_150405.csv" {
			t.Errorf("unexpected filename: %s", got)
		}
	})

	t.Run("Sanitization", func(t *testing.T) {
		tc := []struct {
			name  string
			input string
			want  string
		}{
			{"Strips Special Characters", "My Mix! (2024)", "My_Mix_2024"},
			{"Collapses Whitespace Runs", "a  \t b", "a_b"},
			{"Keeps Hyphen And Underscore", "lo-fi_beats", "lo-fi_beats"},
			{"Empty Falls Back", "", "playlist"},
			{"Truncates To Fifty", strings.Repeat("a", 60), strings.Repeat("a", 50)},
		}

		for _, c := range tc {
			t.Run(c.name, func(t *testing.T) {
				if got := SanitizePlaylistName(c.input); got != c.want {
					t.Errorf("expected %q, got %q", c.want, got)
				}
			})
		}
	})
}
