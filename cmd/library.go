package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/likesync/internal/formatter"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/tasks"
)

func requireDir(cmd *cli.Command) (string, error) {
	dir := cmd.StringArg("dir")
	if dir == "" {
		return "", fmt.Errorf("%w: directory", shared.ErrMissingArgument)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidArgument, dir)
	}
	return dir, nil
}

// LibraryList prints the tags read from each audio file in DIR.
func (r *Runner) LibraryList(ctx context.Context, cmd *cli.Command) error {
	dir, err := requireDir(cmd)
	if err != nil {
		return err
	}

	entries, err := r.libraryReader().ListLocalTracks(ctx, dir, cmd.Bool("recursive") || r.config.Matcher.Recursive)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", joinRow("artist", "title", "duration", "album", "file"))
	for _, e := range entries {
		r.writePlain("%s\n", joinRow(e.Artist, e.Title, shared.FormatDuration(e.DurationSeconds), e.Album, e.Path()))
	}
	return r.writePlainln("%d files", len(entries))
}

func joinRow(fields ...string) string {
	return strings.Join(fields, formatter.Delimiter)
}

// Match searches the catalog for every audio file in DIR and writes the "~"-delimited report.
func (r *Runner) Match(ctx context.Context, cmd *cli.Command) error {
	dir, err := requireDir(cmd)
	if err != nil {
		return err
	}

	tolerance := r.config.Matcher.DurationTolerance
	if cmd.IsSet("tolerance") {
		tolerance = cmd.Float("tolerance")
	}
	opts := tasks.MatchOptions{Tolerance: tolerance, Recursive: cmd.Bool("recursive") || r.config.Matcher.Recursive}

	engine, err := r.engine(ctx, cmd.Bool("save"))
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	report, err := engine.MatchLibrary(ctx, dir, opts, progress)
	close(progress)
	<-done

	if report == nil {
		return err
	}
	if err != nil {
		r.logger.Warn("match finished with errors", "error", err)
	}

	path, writeErr := formatter.WriteMatchReportFile(report, cmd.String("output"), r.config.Matcher.ReportName)
	if writeErr != nil {
		return writeErr
	}
	if csvPath := cmd.String("csv"); csvPath != "" {
		if err := formatter.WriteCSVExport(report.Matches, csvPath); err != nil {
			return err
		}
		r.logger.Info("csv export written", "path", csvPath)
	}

	if cmd.Bool("json") {
		data, jsonErr := formatter.ToJSON(report.Matches)
		if jsonErr != nil {
			return jsonErr
		}
		if _, jsonErr := r.output.Write(append(data, '\n')); jsonErr != nil {
			return fmt.Errorf("failed to write output: %w", jsonErr)
		}
		return err
	}

	r.writePlainHeader("Match Report")
	r.writePlain("Directory: %s\n", report.Dir)
	r.writePlain("Files: %d\n", len(report.Matches))
	r.writePlain("Matched: %d\n", report.MatchedCount())
	if n := report.FailedCount(); n > 0 {
		r.writePlain("Search errors: %d\n", n)
	}
	if cmd.Bool("save") {
		r.writePlain("Cached: %d\n", report.Saved)
	}
	r.writePlainln("✓ Report written to %s", path)
	return err
}
