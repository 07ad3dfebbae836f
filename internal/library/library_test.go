package library

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.senan.xyz/taglib"

	"github.com/desertthunder/likesync/internal/models"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func fakeReader(tags map[string]map[string][]string) *Reader {
	r := NewReader([]string{"mp3", ".FLAC"}, nil)
	r.readTags = func(path string) (map[string][]string, error) {
		t, ok := tags[filepath.Base(path)]
		if !ok {
			return nil, errors.New("not an audio file")
		}
		return t, nil
	}
	r.readLength = func(path string) (time.Duration, error) {
		return 243500 * time.Millisecond, nil
	}
	return r
}

func TestEntryFromTags(t *testing.T) {
	t.Run("all tags present", func(t *testing.T) {
		tags := map[string][]string{
			taglib.Title:       {"Let It Be"},
			taglib.Artist:      {"The Beatles", "Paul McCartney"},
			taglib.Album:       {"Let It Be"},
			taglib.TrackNumber: {"6"},
			taglib.Genre:       {"Rock"},
			taglib.Date:        {"1970-03-06"},
		}

		e := entryFromTags(tags, 243*time.Second+400*time.Millisecond, "/music", "let-it-be.mp3")

		if e.Artist != "The Beatles" || e.Title != "Let It Be" {
			t.Errorf("unexpected descriptor %+v", e.LocalTrackDescriptor)
		}
		if e.DurationSeconds != 243 {
			t.Errorf("expected 243 seconds, got %d", e.DurationSeconds)
		}
		if e.Year != "1970" {
			t.Errorf("expected year 1970, got %s", e.Year)
		}
		if e.Track != "6" || e.Genre != "Rock" || e.Album != "Let It Be" {
			t.Errorf("unexpected secondary tags %+v", e)
		}
		if e.Path() != filepath.Join("/music", "let-it-be.mp3") {
			t.Errorf("unexpected path %s", e.Path())
		}
	})

	t.Run("missing tags become UNK", func(t *testing.T) {
		e := entryFromTags(map[string][]string{taglib.Title: {"  "}}, 0, "/music", "a.mp3")

		for name, got := range map[string]string{"artist": e.Artist, "title": e.Title, "album": e.Album, "year": e.Year, "genre": e.Genre, "track": e.Track} {
			if got != models.UnknownTag {
				t.Errorf("expected %s to be %s, got %q", name, models.UnknownTag, got)
			}
		}
	})

	t.Run("duration rounds half to even", func(t *testing.T) {
		if e := entryFromTags(nil, 2500*time.Millisecond, "", ""); e.DurationSeconds != 2 {
			t.Errorf("expected 2, got %d", e.DurationSeconds)
		}
		if e := entryFromTags(nil, 3500*time.Millisecond, "", ""); e.DurationSeconds != 4 {
			t.Errorf("expected 4, got %d", e.DurationSeconds)
		}
	})
}

func TestListFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.mp3"))
	touch(t, filepath.Join(dir, "A.MP3"))
	touch(t, filepath.Join(dir, "cover.jpg"))
	touch(t, filepath.Join(dir, "nested", "c.flac"))
	if err := os.MkdirAll(filepath.Join(dir, "folder.mp3"), 0o755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}

	r := NewReader([]string{"mp3", ".FLAC"}, nil)

	t.Run("single directory", func(t *testing.T) {
		files, err := r.ListFiles(dir, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 2 {
			t.Fatalf("expected 2 files, got %v", files)
		}
		if files[0][1] != "A.MP3" || files[1][1] != "b.mp3" {
			t.Errorf("unexpected order %v", files)
		}
	})

	t.Run("recursive", func(t *testing.T) {
		files, err := r.ListFiles(dir, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 3 {
			t.Fatalf("expected 3 files, got %v", files)
		}
		last := files[len(files)-1]
		if last[0] != filepath.Join(dir, "nested") || last[1] != "c.flac" {
			t.Errorf("unexpected nested entry %v", last)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		if _, err := r.ListFiles(filepath.Join(dir, "nope"), false); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}

func TestListLocalTracks(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "good.mp3"))
	touch(t, filepath.Join(dir, "broken.mp3"))

	r := fakeReader(map[string]map[string][]string{
		"good.mp3": {taglib.Title: {"Song"}, taglib.Artist: {"Band"}},
	})

	t.Run("skips unreadable files", func(t *testing.T) {
		entries, err := r.ListLocalTracks(context.Background(), dir, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("expected 1 entry, got %d", len(entries))
		}
		if entries[0].Title != "Song" || entries[0].DurationSeconds != 244 {
			t.Errorf("unexpected entry %+v", entries[0])
		}
		if entries[0].Dir != dir || entries[0].File != "good.mp3" {
			t.Errorf("unexpected location %s %s", entries[0].Dir, entries[0].File)
		}
	})

	t.Run("honours cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := r.ListLocalTracks(ctx, dir, false); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
