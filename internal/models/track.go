package models

import (
	"math"
	"sort"
	"strings"
)

// TrackRecord is one track as known to the catalog.
type TrackRecord struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album,omitempty"`
	DurationMS int      `json:"duration_ms"`
	Popularity int      `json:"popularity"`
	URI        string   `json:"uri,omitempty"`
}

// PrimaryArtist returns the first credited artist, or "" when there is none.
func (t TrackRecord) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// ArtistString joins all credited artists with ", ".
func (t TrackRecord) ArtistString() string {
	return strings.Join(t.Artists, ", ")
}

// DurationSeconds returns the duration rounded to whole seconds, halves to even.
func (t TrackRecord) DurationSeconds() int {
	return int(math.RoundToEven(float64(t.DurationMS) / 1000))
}

// Validate rejects records that cannot take part in matching or reconciliation.
func (t TrackRecord) Validate() error {
	if t.ID == "" {
		return NewValidationError("id", "must not be empty")
	}
	if t.DurationMS <= 0 {
		return NewValidationError("duration_ms", "must be positive (got %d)", t.DurationMS)
	}
	if t.Popularity < 0 || t.Popularity > 100 {
		return NewValidationError("popularity", "must be within [0, 100] (got %d)", t.Popularity)
	}
	return nil
}

// Collection maps track ids to their records. Insertion order is irrelevant.
type Collection map[string]TrackRecord

// NewCollection keys records by ID. Later duplicates overwrite earlier ones.
func NewCollection(records ...TrackRecord) Collection {
	c := make(Collection, len(records))
	for _, r := range records {
		c[r.ID] = r
	}
	return c
}

// IDs returns the collection keys in ascending order.
func (c Collection) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Merge returns a new collection holding the receiver's entries overwritten by other's.
func (c Collection) Merge(other Collection) Collection {
	merged := make(Collection, len(c)+len(other))
	for id, r := range c {
		merged[id] = r
	}
	for id, r := range other {
		merged[id] = r
	}
	return merged
}

// Validate checks every record and that each key matches its record id.
func (c Collection) Validate() error {
	for id, r := range c {
		if err := r.Validate(); err != nil {
			return err
		}
		if id != r.ID {
			return NewValidationError("id", "key %q does not match record id %q", id, r.ID)
		}
	}
	return nil
}
