// Package server provides HTTP routing, middleware, and the OAuth callback used by `likesync auth`.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] implements it on
// [http.ServeMux] with method filtering. [Logging] and [Recover] are the stock middleware.
//
// # OAuth Callback Handler
//
// [OAuthHandler] validates the state parameter, exchanges the authorization code through an [Exchanger],
// and sends the result through a channel. It only processes one callback.
//
// # Usage
//
// The auth command starts a [CallbackServer] on the configured host and port, opens the browser on the
// catalog's authorization page, waits for the result, then shuts the server down and saves the token.
package server
