// package services defines interface Catalog for interacting with streaming catalogs
//
// Spotify (via github.com/zmb3/spotify/v2)
package services

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/desertthunder/likesync/internal/models"
)

// MaxBatchSize is the largest number of ids accepted by a single playlist write.
const MaxBatchSize = 100

// Catalog defines the operations the sync and match engines need from a streaming service.
type Catalog interface {
	// Name returns the name of the service (e.g., "Spotify")
	Name() string

	// Search returns track candidates for an artist and title.
	Search(ctx context.Context, artist, title string) ([]models.TrackRecord, error)

	// LikedTracks returns every track in the user's library keyed by id.
	LikedTracks(ctx context.Context) (models.Collection, error)

	// PlaylistTracks returns every track in a playlist keyed by id.
	PlaylistTracks(ctx context.Context, playlistID string) (models.Collection, error)

	// Playlists returns the current user's playlists.
	Playlists(ctx context.Context) ([]models.Playlist, error)

	// AddTracks appends up to [MaxBatchSize] tracks to a playlist.
	AddTracks(ctx context.Context, playlistID string, ids []string) error

	// RemoveTracks removes every occurrence of up to [MaxBatchSize] tracks from a playlist.
	RemoveTracks(ctx context.Context, playlistID string, ids []string) error
}

// OAuthCatalog extends [Catalog] for services authorized with the OAuth2 authorization code flow.
type OAuthCatalog interface {
	Catalog

	// AuthURL returns the authorization page URL carrying state.
	AuthURL(state string) string

	// Exchange trades an authorization code for a token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// Authenticate builds the API client from a token.
	Authenticate(ctx context.Context, token *oauth2.Token) error
}
