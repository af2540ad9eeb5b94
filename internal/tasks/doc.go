// Package tasks orchestrates long-running library operations with real-time
// progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines three operations:
//
//  1. [Engine.ImportLibrary] : Full catalog import
//     - Lists the provider's playlists
//     - Fetches each playlist's tracks and saves them locally
//     - Imports the user's saved tracks as liked tracks
//     - Keeps partial results when individual playlists fail
//
//  2. [Engine.ImportPlaylist] : Single playlist import by ID or name
//
//  3. [Engine.Prefetch] : Resolve audio URLs ahead of playback
//     - Skips tracks already in the store's URL cache
//     - Throttles mirror requests through a [rate.Limiter]
//     - Records per-track outcomes, continuing past failures
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and
// optional data for advanced UI rendering. Updates use select with default
// to prevent blocking.
//
// # Implementation
//
// [LibraryEngine] implements [Engine] with dependencies on:
//   - [services.Service] : catalog provider client
//   - [Library] : local persistence (store.Store)
//   - [TrackResolver] : audio source resolution
package tasks
