// Spotify implementation of [Catalog]
//
// Requests go through github.com/zmb3/spotify/v2; pagination is paced with a [rate.Limiter].
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
)

const (
	// DefaultMarket is used for searches when the config does not name one.
	DefaultMarket = "GB"

	likedPageSize    = 50
	playlistPageSize = 100
)

// Scopes requested during authorization.
var Scopes = []string{
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// SpotifyOption configures a [SpotifyService].
type SpotifyOption func(*SpotifyService)

// WithLogger sets the logger used for skipped items and pagination.
func WithLogger(l *log.Logger) SpotifyOption {
	return func(s *SpotifyService) { s.logger = l }
}

// WithPageDelay sets the minimum pause between page requests. Zero disables pacing.
func WithPageDelay(d time.Duration) SpotifyOption {
	return func(s *SpotifyService) {
		if d > 0 {
			s.limiter = rate.NewLimiter(rate.Every(d), 1)
		} else {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
		}
	}
}

// WithBaseURL points API requests at url, which must end in a slash.
func WithBaseURL(url string) SpotifyOption {
	return func(s *SpotifyService) { s.baseURL = url }
}

// WithEndpoint overrides the OAuth2 authorization and token endpoints.
func WithEndpoint(e oauth2.Endpoint) SpotifyOption {
	return func(s *SpotifyService) { s.config.Endpoint = e }
}

// SpotifyService implements [OAuthCatalog] for the Spotify Web API.
type SpotifyService struct {
	config         *oauth2.Config
	client         *spotify.Client
	market         string
	baseURL        string
	limiter        *rate.Limiter
	logger         *log.Logger
	onTokenRefresh TokenRefreshCallback
	skipped        int
}

// NewSpotifyService creates a new Spotify service from the configured credentials.
//
// Call [SpotifyService.Authenticate] before any catalog operation.
func NewSpotifyService(cfg shared.SpotifyConfig, opts ...SpotifyOption) (*SpotifyService, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/callback"
	}

	market := cfg.Market
	if market == "" {
		market = DefaultMarket
	}

	s := &SpotifyService{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
		market:  market,
		limiter: rate.NewLimiter(rate.Inf, 1),
		logger:  log.New(io.Discard),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a token.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty authorization code", shared.ErrAuthFailed)
	}

	tok, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange auth code: %w", tokenError(err))
	}
	return tok, nil
}

// SetTokenRefreshCallback registers fn to receive rotated tokens so they can be persisted.
// It takes effect on the next [SpotifyService.Authenticate].
func (s *SpotifyService) SetTokenRefreshCallback(fn TokenRefreshCallback) {
	s.onTokenRefresh = fn
}

// Authenticate builds the API client around token. Expired tokens are refreshed automatically
// when a refresh token is present.
func (s *SpotifyService) Authenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || (token.AccessToken == "" && token.RefreshToken == "") {
		return shared.ErrNotAuthenticated
	}

	// Refreshes outlive the caller's context.
	base := context.WithoutCancel(ctx)
	source := &refreshableTokenSource{
		source:     s.config.TokenSource(base, token),
		callback:   s.onTokenRefresh,
		canRefresh: token.RefreshToken != "",
		last:       token.AccessToken,
	}
	httpClient := oauth2.NewClient(base, source)

	var clientOpts []spotify.ClientOption
	if s.baseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(s.baseURL))
	}
	s.client = spotify.New(httpClient, clientOpts...)
	return nil
}

// SkipCount returns the number of items skipped by the last listing for missing ids or names.
func (s *SpotifyService) SkipCount() int {
	return s.skipped
}

func (s *SpotifyService) ready() error {
	if s.client == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return nil
}

// wrapError maps client errors onto the shared sentinels.
func wrapError(op string, err error) error {
	status := 0
	var serr spotify.Error
	var pserr *spotify.Error
	switch {
	case errors.As(err, &serr):
		status = serr.Status
	case errors.As(err, &pserr):
		status = pserr.Status
	}

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w: %w: %s: %v", shared.ErrAPIRequest, shared.ErrNotAuthenticated, shared.ErrTokenExpired, op, err)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w: %s: %v", shared.ErrAPIRequest, shared.ErrNotAuthenticated, op, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s: %v", shared.ErrPlaylistNotFound, op, err)
	case http.StatusServiceUnavailable, http.StatusBadGateway:
		return fmt.Errorf("%w: %w: %s: %v", shared.ErrAPIRequest, shared.ErrServiceUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %w", shared.ErrAPIRequest, op, err)
}

// nextPage waits for the limiter and advances page. It reports false once there are no more pages.
func (s *SpotifyService) nextPage(ctx context.Context, op string, advance func() error) (bool, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return false, err
	}
	err := advance()
	if errors.Is(err, spotify.ErrNoMorePages) {
		return false, nil
	}
	if err != nil {
		return false, wrapError(op, err)
	}
	return true, nil
}

// toTrackRecord converts a catalog track. It reports false for items missing an id, name or duration.
func toTrackRecord(t spotify.FullTrack) (models.TrackRecord, bool) {
	if t.ID == "" || strings.TrimSpace(t.Name) == "" || t.Duration <= 0 {
		return models.TrackRecord{}, false
	}

	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	return models.TrackRecord{
		ID:         string(t.ID),
		Name:       t.Name,
		Artists:    artists,
		Album:      t.Album.Name,
		DurationMS: int(t.Duration),
		Popularity: int(t.Popularity),
		URI:        string(t.URI),
	}, true
}

// Search queries the catalog for tracks by artist and title in the configured market.
func (s *SpotifyService) Search(ctx context.Context, artist, title string) ([]models.TrackRecord, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("artist:%s track:%s", artist, title)
	result, err := s.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Market(s.market))
	if err != nil {
		return nil, wrapError("search", err)
	}
	if result.Tracks == nil {
		return nil, nil
	}

	tracks := make([]models.TrackRecord, 0, len(result.Tracks.Tracks))
	for _, t := range result.Tracks.Tracks {
		if rec, ok := toTrackRecord(t); ok {
			tracks = append(tracks, rec)
		}
	}
	return tracks, nil
}

// LikedTracks pages through the user's saved tracks.
func (s *SpotifyService) LikedTracks(ctx context.Context) (models.Collection, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	page, err := s.client.CurrentUsersTracks(ctx, spotify.Limit(likedPageSize))
	if err != nil {
		return nil, wrapError("liked tracks", err)
	}

	tracks := make(models.Collection)
	s.skipped = 0
	for {
		for _, item := range page.Tracks {
			rec, ok := toTrackRecord(item.FullTrack)
			if !ok {
				s.skipped++
				continue
			}
			tracks[rec.ID] = rec
		}

		more, err := s.nextPage(ctx, "liked tracks", func() error { return s.client.NextPage(ctx, page) })
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		s.logger.Debug("fetched liked tracks page", "count", len(tracks))
	}

	if s.skipped > 0 {
		s.logger.Warn("skipped liked items without id or name", "count", s.skipped)
	}
	return tracks, nil
}

// PlaylistTracks pages through a playlist, skipping local files and items without ids.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) (models.Collection, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	page, err := s.client.GetPlaylistTracks(ctx, spotify.ID(playlistID), spotify.Limit(playlistPageSize))
	if err != nil {
		return nil, wrapError("playlist tracks", err)
	}

	tracks := make(models.Collection)
	s.skipped = 0
	for {
		for _, item := range page.Tracks {
			if item.IsLocal {
				s.skipped++
				continue
			}
			rec, ok := toTrackRecord(item.Track)
			if !ok {
				s.skipped++
				continue
			}
			tracks[rec.ID] = rec
		}

		more, err := s.nextPage(ctx, "playlist tracks", func() error { return s.client.NextPage(ctx, page) })
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
		s.logger.Debug("fetched playlist page", "playlist", playlistID, "count", len(tracks))
	}

	if s.skipped > 0 {
		s.logger.Warn("skipped playlist items without id or name", "playlist", playlistID, "count", s.skipped)
	}
	return tracks, nil
}

// Playlists pages through the current user's playlists.
func (s *SpotifyService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	page, err := s.client.CurrentUsersPlaylists(ctx, spotify.Limit(likedPageSize))
	if err != nil {
		return nil, wrapError("playlists", err)
	}

	var playlists []models.Playlist
	for {
		for _, p := range page.Playlists {
			playlists = append(playlists, models.Playlist{
				ID:          string(p.ID),
				Name:        p.Name,
				Description: p.Description,
				URI:         string(p.URI),
				TrackCount:  int(p.Tracks.Total),
				Public:      p.IsPublic,
			})
		}

		more, err := s.nextPage(ctx, "playlists", func() error { return s.client.NextPage(ctx, page) })
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	return playlists, nil
}

func toIDs(playlistID string, ids []string) ([]spotify.ID, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if len(ids) > MaxBatchSize {
		return nil, fmt.Errorf("%w: %d ids (max %d)", shared.ErrBatchTooLarge, len(ids), MaxBatchSize)
	}

	out := make([]spotify.ID, len(ids))
	for i, id := range ids {
		out[i] = spotify.ID(id)
	}
	return out, nil
}

// AddTracks appends ids to the playlist in a single request.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, ids []string) error {
	if err := s.ready(); err != nil {
		return err
	}
	trackIDs, err := toIDs(playlistID, ids)
	if err != nil || len(trackIDs) == 0 {
		return err
	}

	if _, err := s.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), trackIDs...); err != nil {
		return wrapError("add tracks", err)
	}
	return nil
}

// RemoveTracks removes every occurrence of ids from the playlist in a single request.
func (s *SpotifyService) RemoveTracks(ctx context.Context, playlistID string, ids []string) error {
	if err := s.ready(); err != nil {
		return err
	}
	trackIDs, err := toIDs(playlistID, ids)
	if err != nil || len(trackIDs) == 0 {
		return err
	}

	if _, err := s.client.RemoveTracksFromPlaylist(ctx, spotify.ID(playlistID), trackIDs...); err != nil {
		return wrapError("remove tracks", err)
	}
	return nil
}

var _ OAuthCatalog = (*SpotifyService)(nil)
