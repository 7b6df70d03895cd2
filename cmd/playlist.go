package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/crate/internal/ui"
)

// PlaylistContents fetches and prints the normalized listing of a playlist.
func (r *Runner) PlaylistContents(ctx context.Context, cmd *cli.Command) error {
	contents, err := r.engine.Contents(ctx, localUserID, cmd.String("id"))
	if err != nil {
		return fmt.Errorf("failed to fetch contents: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(contents, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", ui.RenderContents(contents))
}

// PlaylistStats computes and prints the aggregate report for a playlist.
func (r *Runner) PlaylistStats(ctx context.Context, cmd *cli.Command) error {
	report, err := r.engine.Stats(ctx, localUserID, cmd.String("id"))
	if err != nil {
		return fmt.Errorf("failed to compute stats: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", ui.RenderStats(report))
}

// PlaylistDedupe reports duplicates, removing them upstream when --write is set.
func (r *Runner) PlaylistDedupe(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")

	if cmd.Bool("write") {
		result, err := r.engine.Dedupe(ctx, localUserID, id)
		if err != nil {
			return fmt.Errorf("failed to dedupe playlist: %w", err)
		}

		if cmd.Bool("json") {
			return r.writeJSON(result, cmd.Bool("pretty"))
		}
		if result.Removed == 0 {
			return r.writePlainln("%s", ui.RenderOK("No duplicates to remove"))
		}
		return r.writePlainln("%s", ui.RenderOK(fmt.Sprintf("Removed %d duplicate(s), snapshot %s", result.Removed, result.SnapshotID)))
	}

	report, err := r.engine.SimulateDedupe(ctx, localUserID, id)
	if err != nil {
		return fmt.Errorf("failed to scan for duplicates: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", ui.RenderDuplicates(report))
}

// PlaylistMerge simulates merging playlist B into playlist A.
func (r *Runner) PlaylistMerge(ctx context.Context, cmd *cli.Command) error {
	report, err := r.engine.SimulateMerge(ctx, localUserID, cmd.String("a"), cmd.String("b"))
	if err != nil {
		return fmt.Errorf("failed to simulate merge: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, cmd.Bool("pretty"))
	}
	return r.writePlain("%s", ui.RenderMerge(report))
}

// PlaylistExport renders a playlist as CSV and writes it to disk.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	file, err := r.engine.Export(ctx, localUserID, cmd.String("id"))
	if err != nil {
		return fmt.Errorf("failed to export playlist: %w", err)
	}

	path := cmd.String("output")
	if path == "" {
		path = file.Filename
	}

	if err := os.WriteFile(path, file.Data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	return r.writePlainln("%s", ui.RenderOK(fmt.Sprintf("Exported to %s", path)))
}
