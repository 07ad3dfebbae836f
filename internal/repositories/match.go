package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

const matchColumns = `id, file_path, title, artist, album, duration_ms, spotify_id, last_checked`

// MatchRepository persists [models.MatchRow] values in the tracks table.
//
// Rows are keyed by file path: saving a path twice replaces the earlier match and keeps its id.
type MatchRepository struct {
	db *sql.DB
}

// NewMatchRepository creates a new MatchRepository with the given database connection
func NewMatchRepository(db *sql.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

const upsertMatch = `
	INSERT INTO tracks (id, file_path, title, artist, album, duration_ms, spotify_id, last_checked)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(file_path) DO UPDATE SET
		title = excluded.title,
		artist = excluded.artist,
		album = excluded.album,
		duration_ms = excluded.duration_ms,
		spotify_id = excluded.spotify_id,
		last_checked = excluded.last_checked
	RETURNING id
`

// Upsert saves a single row.
func (r *MatchRepository) Upsert(row *models.MatchRow) error {
	_, err := r.BatchUpsert([]*models.MatchRow{row})
	return err
}

// BatchUpsert saves rows in one transaction and returns the number written.
// Each row's id is set to the stored id. Nothing is written if any row is invalid.
func (r *MatchRepository) BatchUpsert(rows []*models.MatchRow) (int, error) {
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return 0, fmt.Errorf("validation failed: %w", err)
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertMatch)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		id := row.ID()
		if id == "" {
			id = shared.GenerateID()
		}

		var stored string
		err := stmt.QueryRow(
			id,
			row.FilePath(),
			row.Title(),
			row.Artist(),
			row.Album(),
			row.DurationMS(),
			nullString(row.CatalogID()),
			row.LastChecked().UTC(),
		).Scan(&stored)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert %s: %w", row.FilePath(), err)
		}
		row.SetID(stored)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit upsert: %w", err)
	}
	return len(rows), nil
}

// GetByFilePath returns the cached row for path or an error wrapping [shared.ErrTrackNotFound].
func (r *MatchRepository) GetByFilePath(path string) (*models.MatchRow, error) {
	query := `SELECT ` + matchColumns + ` FROM tracks WHERE file_path = ?`
	return r.scan(r.db.QueryRow(query, path))
}

// ListUnmatched returns rows without a catalog id ordered by file path.
func (r *MatchRepository) ListUnmatched() ([]*models.MatchRow, error) {
	return r.list(`SELECT ` + matchColumns + ` FROM tracks WHERE spotify_id IS NULL ORDER BY file_path ASC`)
}

// List returns every row ordered by file path.
func (r *MatchRepository) List() ([]*models.MatchRow, error) {
	return r.list(`SELECT ` + matchColumns + ` FROM tracks ORDER BY file_path ASC`)
}

// Count returns the total number of cached rows and how many of them carry a catalog id.
func (r *MatchRepository) Count() (total, matched int, err error) {
	err = r.db.QueryRow(`SELECT COUNT(*), COUNT(spotify_id) FROM tracks`).Scan(&total, &matched)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return total, matched, nil
}

func (r *MatchRepository) list(query string, args ...any) ([]*models.MatchRow, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var out []*models.MatchRow
	for rows.Next() {
		row, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

func (r *MatchRepository) scan(s rowScanner) (*models.MatchRow, error) {
	var (
		id          string
		filePath    string
		title       sql.NullString
		artist      sql.NullString
		album       sql.NullString
		durationMS  sql.NullInt64
		catalogID   sql.NullString
		lastChecked time.Time
	)

	err := s.Scan(&id, &filePath, &title, &artist, &album, &durationMS, &catalogID, &lastChecked)
	if err != nil {
		return nil, scanError(err, shared.ErrTrackNotFound, "track")
	}

	return models.RestoreMatchRow(
		id, filePath, title.String, artist.String, album.String,
		int(durationMS.Int64), catalogID.String, lastChecked,
	), nil
}
