// Package store implements SQLite-backed persistence for the player's keyed
// records: the liked-tracks set, user playlists, player settings (volume and
// current track), and the resolved-URL cache consulted before stream
// resolution.
//
// # Records
//
//   - liked tracks: written on every like/unlike, read back at player startup
//   - playlists: CRUD from the library views and the import engine
//   - settings: volume and current track, written through on every change
//   - resolved urls: track id → stream URL, written after each successful
//     resolution so a track resolves at most once per cache lifetime
//
// # Change notification
//
// Every write publishes a [Change] through the store's [Notifier]. Views
// subscribe to the kinds they render instead of re-reading the database on a
// timer. Publishing never blocks a writer; slow subscribers miss updates.
//
// Persistence failures are the caller's to log. By design a failed write does
// not roll back the in-memory state change that triggered it.
package store
