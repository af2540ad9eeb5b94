// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view player:
//  1. [LikedView] : Browse liked tracks
//  2. [PlaylistListView] : Browse imported playlists
//  3. [TrackListView] : A playlist's tracks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View
// pattern. Playback state flows in through the player's update channel, so
// the now-playing bar tracks position, buffering, and errors without
// polling.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with
// playback controls on space, n/b, s, r, l, and +/-. Contextual help is
// displayed via charmbracelet/bubbles/help.
package ui
