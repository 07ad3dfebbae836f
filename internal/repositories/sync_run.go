package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

// SyncRunRepository persists [models.SyncRun] history in the sync_runs table.
type SyncRunRepository struct {
	db *sql.DB
}

// NewSyncRunRepository creates a new SyncRunRepository with the given database connection
func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Create inserts run with a generated id.
func (r *SyncRunRepository) Create(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	query := `
		INSERT INTO sync_runs (id, playlist_id, added, removed, failed, dry_run, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		id,
		run.PlaylistID(),
		run.Added(),
		run.Removed(),
		run.Failed(),
		run.DryRun(),
		run.CreatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	run.SetID(id)
	return nil
}

// Latest returns the most recent run.
func (r *SyncRunRepository) Latest() (*models.SyncRun, error) {
	query := `
		SELECT id, playlist_id, added, removed, failed, dry_run, created_at
		FROM sync_runs
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scan(r.db.QueryRow(query))
}

// List returns up to limit runs, newest first. A non-positive limit returns every run.
func (r *SyncRunRepository) List(limit int) ([]*models.SyncRun, error) {
	query := `
		SELECT id, playlist_id, added, removed, failed, dry_run, created_at
		FROM sync_runs
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

func (r *SyncRunRepository) scan(s rowScanner) (*models.SyncRun, error) {
	var (
		id         string
		playlistID string
		added      int
		removed    int
		failed     int
		dryRun     bool
		createdAt  time.Time
	)

	if err := s.Scan(&id, &playlistID, &added, &removed, &failed, &dryRun, &createdAt); err != nil {
		return nil, scanError(err, shared.ErrNoSyncRuns, "sync run")
	}
	return models.RestoreSyncRun(id, playlistID, added, removed, failed, dryRun, createdAt), nil
}
