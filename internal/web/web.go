// Package web implements an HTMX-based web application mirroring the TUI functionality.
//
// # HTMX Web Player Implementation Plan
//
// # Architecture
//
// The web app replicates the TUI's library views using server-side rendering
// with HTMX for dynamic updates, with playback handled by the browser's own
// audio element pointed at resolved stream URLs:
//
//  1. Liked Tracks: Server-rendered table with hx-get for playback
//  2. Playlist List: Table with hx-get for track preview
//  3. Track List: HTMX partial swap showing a playlist's tracks
//  4. Now Playing: <audio> element swapped via HTMX when a track is chosen
//
// Core Components
//
//   - HTTP Server: reuses server.Router with html/template rendering
//   - Library Integration: same store.Store and resolver.Resolver as the TUI
//   - Session Management: cookie-based sessions for OAuth state
//
// Routes
//
//	GET  /                      → Liked tracks view
//	GET  /auth/spotify          → OAuth initiation
//	GET  /auth/spotify/callback → OAuth completion (server.OAuthHandler)
//	GET  /playlists             → Playlist list view
//	GET  /playlists/{id}        → HTMX partial: track list
//	POST /play/{id}             → Resolve stream URL, return audio partial
//	POST /like/{id}             → Toggle liked state, return row partial
//
// # State Management
//
// Unlike the TUI's in-memory player state, the web app persists state in:
//   - Session cookies: OAuth state and user tracking
//   - settings table: volume and last played track, shared with the TUI
//   - The browser: playback position lives client-side in the audio element
//
// # Resolution Flow
//
//  1. POST /play/{id} looks up the cached stream URL in the store
//  2. On a miss, the resolver sweeps the mirror registry server-side
//  3. The resolved URL is cached and embedded in the returned <audio> src
//  4. Expired URLs surface as playback errors; the client re-POSTs to re-resolve
//
// Dependencies
//
//   - html/template: Server-side rendering
//   - net/http: HTTP server
//   - gorilla/sessions or similar: Cookie management
//
// Implementation Tasks
//
//  1. HTTP server setup reusing server.Router
//  2. Template structure with HTMX integration
//  3. Session middleware for auth state
//  4. Liked and playlist handlers backed by store.Store
//  5. Play endpoint wrapping resolver.Resolver with cache lookup
//  6. Like toggle endpoint
//  7. OAuth handlers wrapping existing Spotify auth
//  8. Error handling and validation
//
// # Testing Strategy
//
// Use httptest:
//   - Seed an in-memory store for library data
//   - Stub the resolver for play endpoints
//   - Validate HTMX headers and response structure
package web
