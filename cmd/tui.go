package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/tasks"
	"github.com/desertthunder/likesync/internal/ui"
)

// TUI launches the interactive terminal UI for reviewing and applying a sync.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.targetPlaylist(cmd)
	if err != nil {
		return err
	}
	opts, err := r.syncOptions(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	if r.config.Log.File == "" {
		fileLogger, closer, err := shared.NewFileLogger(cmd.String("log-file"))
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		fileLogger.SetLevel(r.logger.GetLevel())
		r.SetLogger(fileLogger)
		r.closers = append(r.closers, closer)
	}

	engine, err := r.engine(ctx, true)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, engine, playlistID, opts)
	if _, err := tea.NewProgram(model, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	result, err := model.Result()
	if err != nil || result == nil {
		return err
	}
	if cmd.Bool("notify") {
		return r.notify(ctx, result)
	}
	return nil
}

var _ ui.Syncer = (*tasks.Engine)(nil)
