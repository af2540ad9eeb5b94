package player

import "context"

// EventKind identifies a lifecycle event from the audio output device.
type EventKind int

const (
	EventProgress    EventKind = iota // Seconds carries the playback position
	EventDuration                     // Seconds carries the media duration
	EventEnded                        // the loaded media played to completion
	EventBufferStart                  // the device stalled waiting for data
	EventBufferEnd                    // the device resumed after a stall
	EventFatal                        // Err carries an unrecoverable device error
)

// Event is a single lifecycle notification from an [Output].
type Event struct {
	Kind    EventKind
	Seconds float64
	Err     error
}

// Output abstracts the audio device a [Player] drives. Exactly one output
// exists per session; the player owns it exclusively.
//
// Play may fail (device not ready, stream rejected); callers convert the
// failure into the player's error state rather than propagating it. A fatal
// event is never auto-retried: the device stays paused until the next Load.
type Output interface {
	// Load prepares the stream at url for playback, replacing any loaded
	// media. The context bounds the life of the stream.
	Load(ctx context.Context, url string) error

	// Play starts or resumes playback of the loaded media.
	Play() error

	// Pause halts playback, keeping the media loaded.
	Pause()

	// Seek repositions playback to the given offset in seconds.
	Seek(seconds float64) error

	// SetVolume sets the output volume, v in [0,1].
	SetVolume(v float64)

	// Events returns the device's lifecycle event stream. No events are
	// delivered after Close returns.
	Events() <-chan Event

	// Close tears the device down and releases its resources.
	Close() error
}
