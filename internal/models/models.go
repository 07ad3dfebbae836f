// package models defines the data model for the liked tracks sync service
package models

import (
	"time"
)

// Model defines the base interface for persistent models.
// Implementations include [MatchRow] and [SyncRun].
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Playlist represents a playlist owned by the authenticated user.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URI         string `json:"uri"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}
