// Package services defines the [Service] interface for music catalog
// providers and implements it for Spotify.
//
// # Service Interface
//
// A provider supplies playlist and track METADATA only. Audio playback never
// touches the provider: the resolver locates a stream for a track from its
// title and artist, so imported libraries stay playable without provider
// credentials.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token
// refresh via the [oauth2.Config] client. Paginated endpoints are followed
// to exhaustion; a page failure surfaces the partial result alongside the
// error so an interrupted import keeps what it fetched.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrNotAuthenticated] : no token set
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrPlaylistNotFound] : playlist ID not found
package services
