package services

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/desertthunder/likesync/internal/shared"
)

// TokenRefreshCallback receives every token that differs from the previous one, including the first.
type TokenRefreshCallback func(*oauth2.Token)

// refreshableTokenSource wraps an [oauth2.TokenSource] and reports rotated tokens.
type refreshableTokenSource struct {
	source     oauth2.TokenSource
	callback   TokenRefreshCallback
	canRefresh bool

	mu   sync.Mutex
	last string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	tok, err := r.source.Token()
	if err != nil {
		if !r.canRefresh {
			return nil, fmt.Errorf("%w: %w: %v", shared.ErrNotAuthenticated, shared.ErrNoRefreshToken, err)
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrTokenExpired, tokenError(err))
	}

	r.mu.Lock()
	changed := tok.AccessToken != r.last
	r.last = tok.AccessToken
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(tok)
	}
	return tok, nil
}

// tokenError maps a token endpoint failure onto the shared auth sentinels.
// A rejected client id or secret also matches [shared.ErrInvalidCredentials].
func tokenError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.ErrorCode == "invalid_client" {
		return fmt.Errorf("%w: %w: %v", shared.ErrAuthFailed, shared.ErrInvalidCredentials, err)
	}
	return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
}
