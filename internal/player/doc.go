// package player implements the playback engine: a queue with a stable
// enqueued order underneath an optional shuffle, a controller that drives a
// single audio output, and the speaker-backed output device itself.
package player
