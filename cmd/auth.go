package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/desertthunder/likesync/internal/server"
	"github.com/desertthunder/likesync/internal/services"
	"github.com/desertthunder/likesync/internal/shared"
)

// authTimeout bounds how long the callback server waits for the browser redirect.
var authTimeout = 2 * time.Minute

// AuthLogin performs OAuth2 authentication flow for Spotify.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.newSpotifyService()
	if err != nil {
		return err
	}

	token, err := r.doOAuth(ctx, svc, !cmd.Bool("no-browser"))
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	r.writePlain("You can now use: likesync sync --dry-run\n")
	return nil
}

// doOAuth runs the authorization code flow against a local callback server and returns the exchanged token.
func (r *Runner) doOAuth(ctx context.Context, svc services.OAuthCatalog, openBrowser bool) (*oauth2.Token, error) {
	state := shared.GenerateID()
	redirectURI := r.config.Credentials.Spotify.RedirectURI

	handler := server.NewOAuthHandler(svc, state, redirectURI)
	router := server.NewBasicRouter(server.Logging(r.logger), server.Recover(r.logger))
	router.Handler(handler)

	srv := server.NewCallbackServer(r.config.Server.Addr(), router, r.logger)
	errs, err := srv.Start()
	if err != nil {
		return nil, err
	}
	defer srv.Shutdown(context.WithoutCancel(ctx))

	authURL := svc.AuthURL(state)
	r.writePlain("→ Waiting for authorization on %s%s\n", r.config.Server.Addr(), server.CallbackPath(redirectURI))
	if !openBrowser {
		r.writePlain("→ Open this URL in your browser:\n\n%s\n\n", authURL)
	} else if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warn("failed to open browser", "error", err)
		r.writePlain("→ Open this URL in your browser:\n\n%s\n\n", authURL)
	} else {
		r.writePlain("→ Opened browser for authorization\n")
	}

	timeout := time.NewTimer(authTimeout)
	defer timeout.Stop()

	select {
	case result := <-handler.Result():
		if err := result.Error(); err != nil {
			return nil, err
		}
		return result.Token, nil
	case err := <-errs:
		return nil, fmt.Errorf("callback server stopped: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: no authorization received within %s", shared.ErrTimeout, authTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AuthStatus reports whether credentials and a token are saved, without contacting Spotify.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify

	r.writePlainHeader("Spotify Authorization")
	if creds.HasCredentials() {
		r.writePlain("Credentials: ✓ client id %s\n", creds.ClientID)
	} else {
		r.writePlain("Credentials: ✗ missing client_id or client_secret\n")
	}

	tok := creds.Token()
	switch {
	case tok == nil:
		r.writePlain("Token: ✗ not authenticated (run 'likesync auth login')\n")
	case tok.Valid():
		r.writePlain("Token: ✓ valid until %s\n", tok.Expiry.Local().Format(time.DateTime))
	case tok.RefreshToken != "":
		r.writePlain("Token: ✓ expired, will refresh on next use\n")
	default:
		r.writePlain("Token: ✗ expired without refresh token (run 'likesync auth login')\n")
	}
	return nil
}
