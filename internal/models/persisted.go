package models

import (
	"time"
)

var (
	_ Model = (*MatchRow)(nil)
	_ Model = (*SyncRun)(nil)
)

// MatchRow is the cached catalog match for one local file.
//
// FilePath is unique. CatalogID is empty when no match was found.
type MatchRow struct {
	id          string
	filePath    string
	title       string
	artist      string
	album       string
	durationMS  int
	catalogID   string
	lastChecked time.Time
}

// NewMatchRow builds a row for entry, recording catalogID (possibly empty) as checked at now.
func NewMatchRow(entry LibraryEntry, catalogID string, now time.Time) *MatchRow {
	return &MatchRow{
		filePath:    entry.Path(),
		title:       entry.Title,
		artist:      entry.Artist,
		album:       entry.Album,
		durationMS:  entry.DurationSeconds * 1000,
		catalogID:   catalogID,
		lastChecked: now,
	}
}

func (m *MatchRow) ID() string             { return m.id }
func (m *MatchRow) CreatedAt() time.Time   { return m.lastChecked }
func (m *MatchRow) FilePath() string       { return m.filePath }
func (m *MatchRow) Title() string          { return m.title }
func (m *MatchRow) Artist() string         { return m.artist }
func (m *MatchRow) Album() string          { return m.album }
func (m *MatchRow) DurationMS() int        { return m.durationMS }
func (m *MatchRow) CatalogID() string      { return m.catalogID }
func (m *MatchRow) LastChecked() time.Time { return m.lastChecked }
func (m *MatchRow) SetID(id string)        { m.id = id }

// Validate requires a file path and a non-negative duration.
func (m *MatchRow) Validate() error {
	if m.filePath == "" {
		return NewValidationError("file_path", "must not be empty")
	}
	if m.durationMS < 0 {
		return NewValidationError("duration_ms", "must not be negative (got %d)", m.durationMS)
	}
	return nil
}

// SyncRun records the outcome of one liked-tracks sync.
type SyncRun struct {
	id         string
	playlistID string
	added      int
	removed    int
	failed     int
	dryRun     bool
	createdAt  time.Time
}

// NewSyncRun creates a run record stamped with the current time.
func NewSyncRun(playlistID string, added, removed, failed int, dryRun bool) *SyncRun {
	return &SyncRun{
		playlistID: playlistID,
		added:      added,
		removed:    removed,
		failed:     failed,
		dryRun:     dryRun,
		createdAt:  time.Now(),
	}
}

func (r *SyncRun) ID() string           { return r.id }
func (r *SyncRun) CreatedAt() time.Time { return r.createdAt }
func (r *SyncRun) PlaylistID() string   { return r.playlistID }
func (r *SyncRun) Added() int           { return r.added }
func (r *SyncRun) Removed() int         { return r.removed }
func (r *SyncRun) Failed() int          { return r.failed }
func (r *SyncRun) DryRun() bool         { return r.dryRun }

func (r *SyncRun) SetID(id string)                  { r.id = id }
func (r *SyncRun) SetCreatedAt(createdAt time.Time) { r.createdAt = createdAt }

// Validate requires a playlist id and non-negative counters.
func (r *SyncRun) Validate() error {
	if r.playlistID == "" {
		return NewValidationError("playlist_id", "must not be empty")
	}
	if r.added < 0 || r.removed < 0 || r.failed < 0 {
		return NewValidationError("counts", "must not be negative")
	}
	return nil
}

// RestoreMatchRow rebuilds a persisted row read back from storage.
func RestoreMatchRow(id, filePath, title, artist, album string, durationMS int, catalogID string, lastChecked time.Time) *MatchRow {
	return &MatchRow{
		id:          id,
		filePath:    filePath,
		title:       title,
		artist:      artist,
		album:       album,
		durationMS:  durationMS,
		catalogID:   catalogID,
		lastChecked: lastChecked,
	}
}

// RestoreSyncRun rebuilds a persisted run read back from storage.
func RestoreSyncRun(id, playlistID string, added, removed, failed int, dryRun bool, createdAt time.Time) *SyncRun {
	return &SyncRun{
		id:         id,
		playlistID: playlistID,
		added:      added,
		removed:    removed,
		failed:     failed,
		dryRun:     dryRun,
		createdAt:  createdAt,
	}
}
