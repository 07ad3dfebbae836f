// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/likesync/internal/models"
)

// MockCatalog is a test double for [services.Catalog].
//
// Searches are keyed by "artist|title". Playlist writes mutate Playlists so a second sync observes the first.
type MockCatalog struct {
	mu sync.Mutex

	Liked         models.Collection
	PlaylistItems map[string]models.Collection
	UserPlaylists []models.Playlist
	SearchResults map[string][]models.TrackRecord

	LikedErr    error
	PlaylistErr error
	SearchErr   error
	AddErr      func(call int, ids []string) error
	RemoveErr   func(call int, ids []string) error

	Searches    []string
	AddCalls    [][]string
	RemoveCalls [][]string
}

// NewMockCatalog returns a catalog with liked tracks and one playlist.
func NewMockCatalog(liked models.Collection, playlistID string, playlist models.Collection) *MockCatalog {
	return &MockCatalog{
		Liked:         liked,
		PlaylistItems: map[string]models.Collection{playlistID: playlist},
		SearchResults: map[string][]models.TrackRecord{},
	}
}

func (m *MockCatalog) Name() string { return "mock" }

func (m *MockCatalog) Search(ctx context.Context, artist, title string) ([]models.TrackRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Searches = append(m.Searches, artist+"|"+title)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.SearchResults[artist+"|"+title], nil
}

func (m *MockCatalog) LikedTracks(ctx context.Context) (models.Collection, error) {
	if m.LikedErr != nil {
		return nil, m.LikedErr
	}
	return m.Liked.Merge(nil), nil
}

func (m *MockCatalog) PlaylistTracks(ctx context.Context, playlistID string) (models.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PlaylistErr != nil {
		return nil, m.PlaylistErr
	}
	items, ok := m.PlaylistItems[playlistID]
	if !ok {
		return nil, errors.New("playlist not found")
	}
	return items.Merge(nil), nil
}

func (m *MockCatalog) Playlists(ctx context.Context) ([]models.Playlist, error) {
	return m.UserPlaylists, nil
}

func (m *MockCatalog) AddTracks(ctx context.Context, playlistID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddCalls = append(m.AddCalls, ids)
	if m.AddErr != nil {
		if err := m.AddErr(len(m.AddCalls), ids); err != nil {
			return err
		}
	}
	items := m.PlaylistItems[playlistID]
	if items == nil {
		items = models.Collection{}
		m.PlaylistItems[playlistID] = items
	}
	for _, id := range ids {
		rec, ok := m.Liked[id]
		if !ok {
			rec = models.TrackRecord{ID: id}
		}
		items[id] = rec
	}
	return nil
}

func (m *MockCatalog) RemoveTracks(ctx context.Context, playlistID string, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RemoveCalls = append(m.RemoveCalls, ids)
	if m.RemoveErr != nil {
		if err := m.RemoveErr(len(m.RemoveCalls), ids); err != nil {
			return err
		}
	}
	for _, id := range ids {
		delete(m.PlaylistItems[playlistID], id)
	}
	return nil
}

// Track builds a catalog record with one artist.
func Track(id, name, artist string, durationMS, popularity int) models.TrackRecord {
	return models.TrackRecord{
		ID:         id,
		Name:       name,
		Artists:    []string{artist},
		DurationMS: durationMS,
		Popularity: popularity,
		URI:        "spotify:track:" + id,
	}
}

// Entry builds a library entry for a local file.
func Entry(dir, file, artist, title string, seconds int) models.LibraryEntry {
	return models.LibraryEntry{
		LocalTrackDescriptor: models.LocalTrackDescriptor{Artist: artist, Title: title, DurationSeconds: seconds},
		Album:                models.UnknownTag,
		Track:                models.UnknownTag,
		Genre:                models.UnknownTag,
		Year:                 models.UnknownTag,
		File:                 file,
		Dir:                  dir,
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
