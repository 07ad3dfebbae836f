// package formatter renders match reports, catalog listings and sync notifications (delimited text, CSV, email)
package formatter

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	"github.com/desertthunder/likesync/internal/tasks"
)

// Delimiter separates fields in the text reports.
const Delimiter = "~"

// MatchReportHeader is the first line of a match report.
var MatchReportHeader = []string{"artist", "title", "mp3_duration", "spotify_duration", "sp_id", "sp_id2", "score", "file", "dir"}

func joinFields(fields ...string) string {
	return strings.Join(fields, Delimiter) + "\n"
}

func orUnknown(s string) string {
	if s == "" {
		return models.UnknownTag
	}
	return s
}

// matchFields returns one report row. Missing selections are written as UNK.
func matchFields(m models.LocalMatch) []string {
	duration, id, id2, score := models.UnknownTag, models.UnknownTag, models.UnknownTag, models.UnknownTag
	if p := m.Result.BestByPopularity; p != nil {
		duration = strconv.Itoa(p.DurationSeconds())
		id = p.ID
	}
	if s := m.Result.BestByScore; s != nil {
		id2 = s.Record.ID
		score = strconv.FormatFloat(s.Score, 'f', 1, 64)
	}
	return []string{
		orUnknown(m.Entry.Artist),
		orUnknown(m.Entry.Title),
		strconv.Itoa(m.Entry.DurationSeconds),
		duration,
		id,
		id2,
		score,
		m.Entry.File,
		m.Entry.Dir,
	}
}

// WriteMatchReport writes a "~"-delimited report with one line per local file.
func WriteMatchReport(w io.Writer, matches []models.LocalMatch) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(joinFields(MatchReportHeader...)); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, m := range matches {
		if _, err := bw.WriteString(joinFields(matchFields(m)...)); err != nil {
			return fmt.Errorf("failed to write report line: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteMatchReportFile writes the report to path, defaulting to name inside dir.
func WriteMatchReportFile(report *tasks.MatchReport, path, name string) (string, error) {
	if path == "" {
		path = filepath.Join(report.Dir, name)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := WriteMatchReport(f, report.Matches); err != nil {
		return "", err
	}
	return path, nil
}

// WriteTrackListing writes "artist~track~duration(s)~uri" lines.
func WriteTrackListing(w io.Writer, tracks []models.TrackRecord) error {
	var buf bytes.Buffer
	buf.WriteString(joinFields("artist", "track", "duration", "uri"))
	for _, t := range tracks {
		buf.WriteString(joinFields(t.ArtistString(), t.Name, strconv.Itoa(t.DurationSeconds()), t.URI))
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write track listing: %w", err)
	}
	return nil
}

// WritePlaylistListing writes "name~uri" lines.
func WritePlaylistListing(w io.Writer, playlists []models.Playlist) error {
	var buf bytes.Buffer
	buf.WriteString(joinFields("name", "uri"))
	for _, p := range playlists {
		buf.WriteString(joinFields(p.Name, p.URI))
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write playlist listing: %w", err)
	}
	return nil
}

// ExportToCSV converts match outcomes to CSV with columns: File, Dir, Artist, Title, Duration, SpotifyID, SpotifyDuration, ScoreID, Score, Error
func ExportToCSV(matches []models.LocalMatch) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"File", "Dir", "Artist", "Title", "Duration", "SpotifyID", "SpotifyDuration", "ScoreID", "Score", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range matches {
		var spotifyID, spotifyDuration, scoreID, score, errMsg string
		if p := m.Result.BestByPopularity; p != nil {
			spotifyID = p.ID
			spotifyDuration = strconv.Itoa(p.DurationSeconds())
		}
		if s := m.Result.BestByScore; s != nil {
			scoreID = s.Record.ID
			score = strconv.FormatFloat(s.Score, 'f', 1, 64)
		}
		if m.Err != nil {
			errMsg = m.Err.Error()
		}

		record := []string{
			m.Entry.File,
			m.Entry.Dir,
			m.Entry.Artist,
			m.Entry.Title,
			strconv.Itoa(m.Entry.DurationSeconds),
			spotifyID,
			spotifyDuration,
			scoreID,
			score,
			errMsg,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteCSVExport writes [ExportToCSV] output to path.
func WriteCSVExport(matches []models.LocalMatch, path string) error {
	data, err := ExportToCSV(matches)
	if err != nil {
		return fmt.Errorf("failed to generate CSV: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}

// ToJSON renders match outcomes for machine consumption.
func ToJSON(matches []models.LocalMatch) ([]byte, error) {
	return shared.MarshalJSON(matches, true)
}

// EmailSubject returns "Spotify Sync Status - YYYY-MM-DD".
func EmailSubject(date time.Time) string {
	return fmt.Sprintf("Spotify Sync Status - %s", date.Format(time.DateOnly))
}

func writeSection(buf *bytes.Buffer, label string, ids []string, details models.Collection) {
	if len(ids) == 0 {
		fmt.Fprintf(buf, "--- No Tracks %s ---\n\n", label)
		return
	}
	fmt.Fprintf(buf, "--- %s Tracks (%d) ---\n", label, len(ids))
	for _, id := range ids {
		fmt.Fprintf(buf, "- %s\n", tasks.Describe(details, id))
	}
	buf.WriteString("\n")
}

// SyncEmail renders the notification subject and body for a sync result.
//
// The added and removed sections list the planned delta, so a dry run reports what would change.
func SyncEmail(result *tasks.SyncResult, date time.Time) (subject, body string) {
	var buf bytes.Buffer

	var added, removed []string
	var details models.Collection
	if result != nil && result.Plan != nil {
		added, removed = result.Plan.Delta.ToAdd, result.Plan.Delta.ToRemove
		details = result.Plan.Details
	}

	if len(added) == 0 && len(removed) == 0 {
		buf.WriteString("Spotify Sync Ran: No changes detected.\n\n")
	} else {
		buf.WriteString("Spotify Sync Ran: Changes detected.\n\n")
	}

	buf.WriteString("Spotify Liked Songs Sync Results:\n\n")
	writeSection(&buf, "Added", added, details)
	writeSection(&buf, "Removed", removed, details)

	if result != nil && len(result.Failed) > 0 {
		fmt.Fprintf(&buf, "--- Failed Writes (%d) ---\n", result.FailedCount())
		for _, f := range result.Failed {
			for _, id := range f.IDs {
				fmt.Fprintf(&buf, "- %s (%s)\n", tasks.Describe(details, id), f.Op)
			}
		}
		buf.WriteString("\n")
	}

	return EmailSubject(date), buf.String()
}
