// package ui renders analysis reports as styled terminal text.
//
// Rendering goes through a package-level [Palette] of [lipgloss] styles so
// every command's output shares one look. All render functions return plain
// strings; the caller decides where they are written.
package ui

import (
	"fmt"
	"strings"

	"github.com/desertthunder/crate/internal/models"
)

// nullable renders a possibly-missing string field.
func nullable(s *string) string {
	if s == nil {
		return styles.help.Render("(none)")
	}
	return *s
}

// RenderStats renders an aggregate report as a styled block.
func RenderStats(report *models.AggregateReport) string {
	var b strings.Builder

	b.WriteString(styles.title.Render(report.Playlist.Name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Owner: %s\n", report.Playlist.Owner)
	fmt.Fprintf(&b, "Tracks: %d total, %d unique\n", report.TracksTotal, report.TracksUnique)
	fmt.Fprintf(&b, "Artists: %d unique\n", report.ArtistsUnique)

	if report.AvgPopularity != nil {
		fmt.Fprintf(&b, "Avg popularity: %.1f\n", *report.AvgPopularity)
	} else {
		fmt.Fprintf(&b, "Avg popularity: %s\n", styles.help.Render("n/a"))
	}

	fmt.Fprintf(&b, "Releases: %s to %s\n", nullable(report.ReleaseRange.Oldest), nullable(report.ReleaseRange.Newest))

	if len(report.TopArtists) > 0 {
		b.WriteString(styles.ok.Render("Top artists"))
		b.WriteString("\n")
		for i, artist := range report.TopArtists {
			fmt.Fprintf(&b, "  %2d. %s (%d)\n", i+1, artist.Name, artist.Count)
		}
	}

	return b.String()
}

// RenderDuplicates renders a duplicate report as a styled block.
func RenderDuplicates(report *models.DuplicateReport) string {
	var b strings.Builder

	if report.Duplicates == 0 {
		b.WriteString(styles.ok.Render("✓ No duplicates found"))
		b.WriteString("\n")
		fmt.Fprintf(&b, "%d tracks scanned\n", report.Total)
		return b.String()
	}

	b.WriteString(styles.warn.Render(fmt.Sprintf("%d duplicate(s) in %d tracks", report.Duplicates, report.Total)))
	b.WriteString("\n")
	for _, entry := range report.Sample {
		fmt.Fprintf(&b, "  #%d %s\n", entry.Position, nullable(entry.Track.Name))
	}
	if report.Duplicates > len(report.Sample) {
		fmt.Fprintf(&b, "  %s\n", styles.help.Render(fmt.Sprintf("and %d more", report.Duplicates-len(report.Sample))))
	}

	return b.String()
}

// RenderMerge renders a merge simulation as a styled block.
func RenderMerge(report *models.MergeReport) string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Merge simulation"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "A %s: %d tracks\n", report.PlaylistA.ID, report.PlaylistA.Tracks)
	fmt.Fprintf(&b, "B %s: %d tracks\n", report.PlaylistB.ID, report.PlaylistB.Tracks)
	fmt.Fprintf(&b, "Union: %d\n", report.UnionCount)
	fmt.Fprintf(&b, "Intersection: %d\n", report.IntersectionCount)
	fmt.Fprintf(&b, "Would add from B to A: %s\n", styles.ok.Render(fmt.Sprintf("%d", report.WouldAddFromBToA)))

	return b.String()
}

// RenderContents renders a normalized listing as one line per track.
func RenderContents(contents *models.PlaylistContents) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", styles.title.Render(fmt.Sprintf("%d tracks", contents.Count)))
	for _, track := range contents.Tracks {
		names := make([]string, 0, len(track.Artists))
		for _, artist := range track.Artists {
			names = append(names, artist.Name)
		}
		fmt.Fprintf(&b, "%4d. %s %s\n", track.Position+1, nullable(track.Name), styles.help.Render(strings.Join(names, ", ")))
	}

	return b.String()
}

// RenderError renders an error message in the palette's error style.
func RenderError(msg string) string {
	return styles.err.Render("✗ " + msg)
}

// RenderOK renders a success message in the palette's ok style.
func RenderOK(msg string) string {
	return styles.ok.Render("✓ " + msg)
}
