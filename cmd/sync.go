package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/likesync/internal/formatter"
	"github.com/desertthunder/likesync/internal/notify"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/tasks"
)

// targetPlaylist returns --playlist, falling back to the configured target.
func (r *Runner) targetPlaylist(cmd *cli.Command) (string, error) {
	id := cmd.String("playlist")
	if id == "" {
		id = r.config.Sync.TargetPlaylistID
	}
	if id == "" {
		return "", fmt.Errorf("%w: --playlist or sync.target_playlist_id (%s)", shared.ErrMissingArgument, shared.EnvTargetPlaylist)
	}
	return id, nil
}

func (r *Runner) syncOptions(cmd *cli.Command) (tasks.SyncOptions, error) {
	size := int(cmd.Int("chunk-size"))
	if size == 0 {
		size = r.config.Sync.ChunkSize
	}
	if size < 0 || size > 100 {
		return tasks.SyncOptions{}, fmt.Errorf("%w: chunk size must be between 1 and 100 (got %d)", shared.ErrInvalidFlag, size)
	}
	return tasks.SyncOptions{DryRun: cmd.Bool("dry-run"), ChunkSize: size}, nil
}

// Sync makes the target playlist mirror the liked tracks, printing a summary and optionally emailing it.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.targetPlaylist(cmd)
	if err != nil {
		return err
	}
	opts, err := r.syncOptions(cmd)
	if err != nil {
		return err
	}

	engine, err := r.engine(ctx, true)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	result, err := engine.Sync(ctx, playlistID, opts, progress)
	close(progress)
	<-done

	if result == nil {
		return err
	}
	if err != nil {
		r.logger.Warn("sync finished with errors", "error", err)
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(result, cmd.Bool("pretty")); err != nil {
			return err
		}
	} else {
		r.writeSyncSummary(result)
	}

	if cmd.Bool("notify") {
		if err := r.notify(ctx, result); err != nil {
			return err
		}
	}

	if n := result.FailedCount(); n > 0 {
		return fmt.Errorf("%w: %d tracks could not be written to playlist %s", shared.ErrAPIRequest, n, playlistID)
	}
	return err
}

func (r *Runner) writeSyncSummary(result *tasks.SyncResult) {
	plan := result.Plan

	title := "Sync Complete"
	if result.DryRun {
		title = "Sync Preview (dry run)"
	}
	r.writePlainHeader(title)
	r.writePlain("Playlist: %s\n", plan.PlaylistID)
	r.writePlain("Liked tracks: %d\n", len(plan.Liked))
	r.writePlain("Playlist tracks: %d\n", len(plan.Playlist))

	if plan.Delta.IsEmpty() {
		r.writePlainln("✓ Playlist already matches your liked tracks")
		return
	}

	r.writePlainln("Tracks to add: %d", len(plan.Delta.ToAdd))
	for _, id := range plan.Delta.ToAdd {
		r.writePlain("  + %s\n", plan.Describe(id))
	}
	r.writePlainln("Tracks to remove: %d", len(plan.Delta.ToRemove))
	for _, id := range plan.Delta.ToRemove {
		r.writePlain("  - %s\n", plan.Describe(id))
	}

	if len(result.Failed) > 0 {
		r.writePlainln("✗ Failed writes: %d", result.FailedCount())
		for _, f := range result.Failed {
			r.writePlain("  chunk %d (%s): %v\n", f.Index, f.Op, f.Err)
		}
	}

	if !result.DryRun {
		r.writePlainln("✓ Added %d, removed %d", len(result.Added), len(result.Removed))
	}
}

// notify emails the sync summary. Missing email settings are reported and skipped.
func (r *Runner) notify(ctx context.Context, result *tasks.SyncResult) error {
	mailer := r.mailer
	if mailer == nil {
		m, err := notify.NewMailer(r.config.Email)
		if errors.Is(err, shared.ErrEmailNotConfigured) {
			r.logger.Warn("email not configured, skipping notification")
			return nil
		}
		if err != nil {
			return err
		}
		mailer = m
	}

	subject, body := formatter.SyncEmail(result, time.Now())
	if err := mailer.Send(ctx, subject, body); err != nil {
		return err
	}

	r.logger.Info("sync notification sent", "recipient", r.config.Email.Recipient)
	return nil
}
