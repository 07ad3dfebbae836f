package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/repositories"
	"github.com/desertthunder/likesync/internal/shared"
)

type runView struct {
	ID         string    `json:"id"`
	PlaylistID string    `json:"playlist_id"`
	Added      int       `json:"added"`
	Removed    int       `json:"removed"`
	Failed     int       `json:"failed"`
	DryRun     bool      `json:"dry_run"`
	CreatedAt  time.Time `json:"created_at"`
}

type matchView struct {
	FilePath    string    `json:"file_path"`
	Artist      string    `json:"artist"`
	Title       string    `json:"title"`
	Album       string    `json:"album,omitempty"`
	DurationMS  int       `json:"duration_ms"`
	CatalogID   string    `json:"catalog_id,omitempty"`
	LastChecked time.Time `json:"last_checked"`
}

func newRunView(run *models.SyncRun) runView {
	return runView{
		ID:         run.ID(),
		PlaylistID: run.PlaylistID(),
		Added:      run.Added(),
		Removed:    run.Removed(),
		Failed:     run.Failed(),
		DryRun:     run.DryRun(),
		CreatedAt:  run.CreatedAt(),
	}
}

func newMatchView(row *models.MatchRow) matchView {
	return matchView{
		FilePath:    row.FilePath(),
		Artist:      row.Artist(),
		Title:       row.Title(),
		Album:       row.Album(),
		DurationMS:  row.DurationMS(),
		CatalogID:   row.CatalogID(),
		LastChecked: row.LastChecked(),
	}
}

// HistoryRuns lists the most recent recorded sync runs.
func (r *Runner) HistoryRuns(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	runs, err := repositories.NewSyncRunRepository(db).List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, newRunView(run))
	}
	if cmd.Bool("json") {
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	if len(views) == 0 {
		return r.writePlain("%v\n", shared.ErrNoSyncRuns)
	}

	r.writePlainHeader("Sync History")
	for _, v := range views {
		mode := ""
		if v.DryRun {
			mode = " (dry run)"
		}
		r.writePlain("%s  %s  +%d -%d", v.CreatedAt.Local().Format(time.DateTime), v.PlaylistID, v.Added, v.Removed)
		if v.Failed > 0 {
			r.writePlain(" ✗%d", v.Failed)
		}
		r.writePlain("%s\n", mode)
	}
	return nil
}

// HistoryMatches lists cached library matches, optionally only those without a catalog id.
func (r *Runner) HistoryMatches(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	repo := repositories.NewMatchRepository(db)

	var rows []*models.MatchRow
	if cmd.Bool("unmatched") {
		rows, err = repo.ListUnmatched()
	} else {
		rows, err = repo.List()
	}
	if err != nil {
		return err
	}

	views := make([]matchView, 0, len(rows))
	for _, row := range rows {
		views = append(views, newMatchView(row))
	}
	if cmd.Bool("json") {
		return r.writeJSON(views, cmd.Bool("pretty"))
	}

	total, matched, err := repo.Count()
	if err != nil {
		return err
	}

	r.writePlain("%s\n", joinRow("artist", "title", "catalog_id", "file"))
	for _, v := range views {
		id := v.CatalogID
		if id == "" {
			id = models.UnknownTag
		}
		r.writePlain("%s\n", joinRow(v.Artist, v.Title, id, v.FilePath))
	}
	return r.writePlainln("%d of %d cached files matched", matched, total)
}
