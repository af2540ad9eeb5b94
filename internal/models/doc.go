// Package models defines domain entities shared across the aural player.
//
// The package contains two categories of types:
//
// 1. Catalog records: Lightweight structs representing playable content
//   - [Track] : Song metadata with an optional resolved stream URL
//   - [Playlist] : Ordered track collection with provenance metadata
//
// 2. Playback vocabulary:
//   - [RepeatMode] : off/all/one cycle governing end-of-track behavior
//
// Tracks imported from an external provider carry a Source tag and the
// provider's own URI so imports stay traceable to their origin. A track with
// an empty AudioURL is playable but unresolved; the resolver looks up a
// stream for it on first play.
package models
