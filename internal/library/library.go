// package library reads tag metadata from local audio files.
package library

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"go.senan.xyz/taglib"

	"github.com/desertthunder/likesync/internal/models"
)

// DefaultExtensions lists the file extensions read when none are configured.
var DefaultExtensions = []string{".mp3"}

// Reader lists local audio files and converts their tags into [models.LibraryEntry] values.
type Reader struct {
	extensions []string
	logger     *log.Logger
	readTags   func(path string) (map[string][]string, error)
	readLength func(path string) (time.Duration, error)
}

// NewReader creates a Reader for files with the given extensions (case-insensitive, with leading dot).
func NewReader(extensions []string, logger *log.Logger) *Reader {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	exts := make([]string, 0, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}

	return &Reader{
		extensions: exts,
		logger:     logger,
		readTags:   taglib.ReadTags,
		readLength: func(path string) (time.Duration, error) {
			props, err := taglib.ReadProperties(path)
			if err != nil {
				return 0, err
			}
			return props.Length, nil
		},
	}
}

func (r *Reader) matches(name string) bool {
	return slices.Contains(r.extensions, strings.ToLower(filepath.Ext(name)))
}

// ListFiles returns the matching files under dir as (directory, file name) pairs in lexical order.
func (r *Reader) ListFiles(dir string, recursive bool) ([][2]string, error) {
	var files [][2]string

	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
		}
		for _, e := range entries {
			if !e.IsDir() && r.matches(e.Name()) {
				files = append(files, [2]string{dir, e.Name()})
			}
		}
		return files, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && r.matches(d.Name()) {
			files = append(files, [2]string{filepath.Dir(path), d.Name()})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dir, err)
	}
	return files, nil
}

// ListLocalTracks reads the tags of every matching file in dir.
//
// Files whose tags cannot be read are logged and skipped. Directory errors are returned.
func (r *Reader) ListLocalTracks(ctx context.Context, dir string, recursive bool) ([]models.LibraryEntry, error) {
	files, err := r.ListFiles(dir, recursive)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LibraryEntry, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return entries, err
		}

		entry, err := r.ReadEntry(f[0], f[1])
		if err != nil {
			r.logger.Warn("skipping unreadable file", "file", filepath.Join(f[0], f[1]), "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	r.logger.Debug("read local tracks", "dir", dir, "count", len(entries), "skipped", len(files)-len(entries))
	return entries, nil
}

// ReadEntry reads one file's tags and duration.
func (r *Reader) ReadEntry(dir, file string) (models.LibraryEntry, error) {
	path := filepath.Join(dir, file)

	tags, err := r.readTags(path)
	if err != nil {
		return models.LibraryEntry{}, fmt.Errorf("failed to read tags: %w", err)
	}

	length, err := r.readLength(path)
	if err != nil {
		return models.LibraryEntry{}, fmt.Errorf("failed to read audio properties: %w", err)
	}

	return entryFromTags(tags, length, dir, file), nil
}

// entryFromTags builds an entry, substituting [models.UnknownTag] for missing values.
// Duration is rounded to whole seconds, halves to even.
func entryFromTags(tags map[string][]string, length time.Duration, dir, file string) models.LibraryEntry {
	year := firstTag(tags, taglib.Date)
	if year != models.UnknownTag {
		year, _, _ = strings.Cut(year, "-")
	}

	return models.LibraryEntry{
		LocalTrackDescriptor: models.LocalTrackDescriptor{
			Artist:          firstTag(tags, taglib.Artist),
			Title:           firstTag(tags, taglib.Title),
			DurationSeconds: int(math.RoundToEven(length.Seconds())),
		},
		Album: firstTag(tags, taglib.Album),
		Track: firstTag(tags, taglib.TrackNumber),
		Genre: firstTag(tags, taglib.Genre),
		Year:  year,
		File:  file,
		Dir:   dir,
	}
}

func firstTag(tags map[string][]string, key string) string {
	if vals, ok := tags[key]; ok && len(vals) > 0 && strings.TrimSpace(vals[0]) != "" {
		return vals[0]
	}
	return models.UnknownTag
}
