package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/aural-fm/aural/internal/shared"
)

// newTestService points a service at a test server with a token already set.
func newTestService(t *testing.T, server *httptest.Server) *SpotifyService {
	t.Helper()

	srv, err := NewSpotifyService(shared.SpotifyConfig{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	srv.baseURL = server.URL
	srv.token = &oauth2.Token{AccessToken: "test_token"}
	return srv
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(shared.SpotifyConfig{
				ClientID:     "test_client_id",
				ClientSecret: "test_client_secret",
				RedirectURI:  "http://localhost:9090/callback",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.config.RedirectURL != "http://localhost:9090/callback" {
				t.Errorf("unexpected redirect URI %s", srv.config.RedirectURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(shared.SpotifyConfig{ClientSecret: "secret"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(shared.SpotifyConfig{ClientID: "id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			srv, err := NewSpotifyService(shared.SpotifyConfig{
				ClientID:     "id",
				ClientSecret: "secret",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.config.RedirectURL != "http://localhost:8080/callback" {
				t.Errorf("expected default redirect URI, got %s", srv.config.RedirectURL)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		srv, err := NewSpotifyService(shared.SpotifyConfig{
			ClientID:     "test_client_id",
			ClientSecret: "test_client_secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.GetAuthURL("test_state")
		for _, want := range []string{"test_client_id", "test_state", "user-library-read"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("expected auth URL to contain %q, got %s", want, authURL)
			}
		}
	})

	t.Run("Not Authenticated", func(t *testing.T) {
		srv, err := NewSpotifyService(shared.SpotifyConfig{
			ClientID:     "id",
			ClientSecret: "secret",
		})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		_, err = srv.UserProfile(context.Background())
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestSpotifyStatusMapping(t *testing.T) {
	t.Run("Unauthorized", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		srv := newTestService(t, server)
		_, err := srv.UserProfile(context.Background())
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})

	t.Run("Playlist Not Found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		srv := newTestService(t, server)
		_, err := srv.GetPlaylistTracks(context.Background(), "missing")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("Server Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		srv := newTestService(t, server)
		_, err := srv.UserProfile(context.Background())
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestGetPlaylists(t *testing.T) {
	t.Run("Follows Pagination", func(t *testing.T) {
		var requests []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests = append(requests, r.URL.String())
			if r.Header.Get("Authorization") != "Bearer test_token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			switch r.URL.Query().Get("offset") {
			case "0":
				fmt.Fprint(w, `{
					"items": [
						{"id": "pl1", "name": "Morning Mix", "description": "wake up", "images": [{"url": "https://img.example.com/pl1.jpg"}]},
						{"id": "pl2", "name": "Focus", "tracks": {"total": 12}}
					],
					"total": 3, "limit": 50, "offset": 0, "next": "https://api.spotify.com/v1/me/playlists?offset=50&limit=50"
				}`)
			default:
				fmt.Fprint(w, `{"items": [{"id": "pl3", "name": "Late Night"}], "total": 3, "limit": 50, "offset": 50, "next": null}`)
			}
		}))
		defer server.Close()

		srv := newTestService(t, server)
		playlists, err := srv.GetPlaylists(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(playlists) != 3 {
			t.Fatalf("expected 3 playlists across pages, got %d", len(playlists))
		}
		if len(requests) != 2 {
			t.Errorf("expected 2 page requests, got %d: %v", len(requests), requests)
		}
		if playlists[0].CoverURL != "https://img.example.com/pl1.jpg" {
			t.Errorf("expected cover URL mapped, got %q", playlists[0].CoverURL)
		}
		if playlists[0].Source != SourceSpotify {
			t.Errorf("expected source %q, got %q", SourceSpotify, playlists[0].Source)
		}
	})
}

func TestGetPlaylistTracks(t *testing.T) {
	t.Run("Maps Track Fields", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/playlists/pl1/tracks") {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			fmt.Fprint(w, `{
				"items": [
					{"track": {
						"id": "t1", "name": "Paint It Black", "duration_ms": 202000, "uri": "spotify:track:t1",
						"artists": [{"name": "The Rolling Stones"}],
						"album": {"name": "Aftermath", "images": [{"url": "https://img.example.com/aftermath.jpg"}]}
					}},
					{"track": {"id": "", "name": "Unavailable Local Track"}}
				],
				"total": 2, "limit": 50, "offset": 0, "next": null
			}`)
		}))
		defer server.Close()

		srv := newTestService(t, server)
		tracks, err := srv.GetPlaylistTracks(context.Background(), "pl1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(tracks) != 1 {
			t.Fatalf("expected the unavailable entry skipped, got %d tracks", len(tracks))
		}

		track := tracks[0]
		if track.Title != "Paint It Black" || track.Artist != "The Rolling Stones" {
			t.Errorf("unexpected title/artist: %q / %q", track.Title, track.Artist)
		}
		if track.Duration != 202 {
			t.Errorf("expected duration in seconds, got %d", track.Duration)
		}
		if track.SourceURI != "spotify:track:t1" {
			t.Errorf("unexpected source URI %q", track.SourceURI)
		}
		if track.CoverURL != "https://img.example.com/aftermath.jpg" {
			t.Errorf("unexpected cover %q", track.CoverURL)
		}
	})

	t.Run("Keeps Partial Results On Page Failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("offset") != "0" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, `{
				"items": [{"track": {"id": "t1", "name": "First", "artists": [{"name": "A"}]}}],
				"total": 60, "limit": 50, "offset": 0, "next": "https://api.spotify.com/v1/playlists/pl1/tracks?offset=50"
			}`)
		}))
		defer server.Close()

		srv := newTestService(t, server)
		tracks, err := srv.GetPlaylistTracks(context.Background(), "pl1")
		if err == nil {
			t.Fatal("expected the second page to fail")
		}
		if len(tracks) != 1 {
			t.Errorf("expected the first page kept, got %d tracks", len(tracks))
		}
	})
}

func TestGetLikedTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me/tracks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"items": [{"track": {"id": "t9", "name": "Liked Song", "artists": [{"name": "B"}]}}],
			"total": 1, "limit": 50, "offset": 0, "next": null
		}`)
	}))
	defer server.Close()

	srv := newTestService(t, server)
	tracks, err := srv.GetLikedTracks(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tracks) != 1 {
		t.Fatalf("expected 1 track, got %d", len(tracks))
	}
	if !tracks[0].Liked {
		t.Error("expected imported saved tracks marked liked")
	}
}
