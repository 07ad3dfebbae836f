// Package services defines the [Catalog] interface for streaming catalogs and implements it for Spotify.
//
// # Catalog Interface
//
// The sync and match engines only depend on [Catalog]: search, liked tracks, playlist tracks,
// playlist listing and batched playlist writes. Every track crosses this boundary as a
// [models.TrackRecord]; items without an id or name are skipped and counted.
//
// # Spotify Implementation
//
// [SpotifyService] wraps github.com/zmb3/spotify/v2 behind an [oauth2] client with automatic
// token refresh. Rotated tokens are reported through [SpotifyService.SetTokenRefreshCallback]
// so the CLI can persist them to the config file.
//
// Page requests are paced with a [rate.Limiter] built from the configured page delay.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called, or the API answered 401/403
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrPlaylistNotFound] : Playlist ID not found
//   - [shared.ErrBatchTooLarge] : more than [MaxBatchSize] ids in one write
package services
