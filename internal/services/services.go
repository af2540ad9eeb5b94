// package services defines interface Service for catalog providers
package services

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/aural-fm/aural/internal/models"
)

// Service is a music catalog provider the library can import from. Providers
// supply playlist and track metadata only; audio resolution happens
// elsewhere.
type Service interface {
	// Name returns the provider name, e.g. "Spotify".
	Name() string

	// GetPlaylists retrieves the authenticated user's playlists, without
	// their tracks.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylistTracks retrieves the full track list of a playlist. When a
	// page fails mid-way the tracks fetched so far are returned alongside
	// the error.
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// GetLikedTracks retrieves the user's saved tracks. Partial results
	// follow the same rule as GetPlaylistTracks.
	GetLikedTracks(ctx context.Context) ([]models.Track, error)
}

// OAuthService extends Service for providers authenticated with an OAuth2
// authorization code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the provider's authorization URL for the given
	// CSRF state token.
	GetAuthURL(state string) string

	// OAuthConfig exposes the OAuth2 config for the local callback server.
	OAuthConfig() *oauth2.Config

	// SetToken authenticates the service with a previously obtained token.
	SetToken(ctx context.Context, token *oauth2.Token)
}
