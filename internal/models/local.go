package models

import "path/filepath"

// UnknownTag is the placeholder used for tags missing from a local file.
const UnknownTag = "UNK"

// LocalTrackDescriptor is the tag metadata of one local audio file, used as a match query.
type LocalTrackDescriptor struct {
	Artist          string `json:"artist"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"duration"`
}

// Validate rejects descriptors with a negative duration.
func (d LocalTrackDescriptor) Validate() error {
	if d.DurationSeconds < 0 {
		return NewValidationError("duration", "must not be negative (got %d)", d.DurationSeconds)
	}
	return nil
}

// LibraryEntry is a local file's match query plus its location and secondary tags.
type LibraryEntry struct {
	LocalTrackDescriptor
	Album string `json:"album"`
	Track string `json:"track"`
	Genre string `json:"genre"`
	Year  string `json:"year"`
	File  string `json:"file"`
	Dir   string `json:"dir"`
}

// Path joins Dir and File.
func (e LibraryEntry) Path() string {
	return filepath.Join(e.Dir, e.File)
}
