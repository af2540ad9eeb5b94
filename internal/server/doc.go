// Package server provides HTTP routing, middleware, and OAuth handling for
// the CLI's authentication flow.
//
// # Router Infrastructure
//
// [Router] routes requests with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first),
// following the standard Go pattern.
//
// Routing is backed by [http.ServeMux] method patterns, so unmatched
// methods on a known path answer 405 without any per-handler checks.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the
// authorization code for tokens, and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Current Usage
//
// When the user runs the auth command, a temporary HTTP server starts on
// localhost, handles the provider callback, and shuts down after receiving
// the OAuth token.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib
// handler interface and adds routes, allowing handlers to register multiple
// routes to encapsulate route definitions within the implementation.
package server
