// Package resolver finds playable audio stream URLs for tracks that carry
// none, by querying public relay mirrors of two API dialects (Piped and
// Invidious).
//
// # Sweep strategy
//
// Each resolution attempt shuffles the full mirror registry and walks it
// sequentially. Every request is bounded by a per-request timeout; a timeout,
// transport error, non-2xx status, or malformed body on one instance simply
// advances the sweep to the next. Only exhausting the whole registry is
// reported, as [shared.ErrNoSource] — a normal outcome the player turns into
// a "no source available" message, never a crash.
//
// # Dialects
//
// Piped: search with filter=music_songs, then /streams/{id}; selection
// prefers an audio/mp4 stream deterministically.
//
// Invidious: /api/v1/search with type=video, then /api/v1/videos/{id};
// selection filters adaptiveFormats to audio types and takes the highest
// bitrate.
//
// The resolver has no side effects beyond the network calls; callers cache
// the returned URL (the player writes it through the store's resolved-URL
// table).
package resolver
