package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"

	"github.com/aural-fm/aural/internal/streaming"
)

const defaultBufferSize = 256 * 1024

// SpeakerOutput implements [Output] on the system speaker via beep. It
// streams the remote URL through a buffered HTTP reader and decodes MP3 on
// the fly, so playback starts before the file is fully fetched.
type SpeakerOutput struct {
	mu sync.Mutex

	events     chan Event
	bufferSize int
	volume     float64

	streamer beep.StreamSeekCloser
	ctrl     *beep.Ctrl
	vol      *effects.Volume
	format   beep.Format
	reader   *streaming.Reader

	initialized bool
	closed      bool
	cancelLoad  context.CancelFunc
	monitorStop chan struct{}
}

// NewSpeakerOutput creates the session's speaker-backed output device.
// bufferKB controls the HTTP read-ahead buffer; zero uses the default 256 KB.
func NewSpeakerOutput(bufferKB int) *SpeakerOutput {
	size := bufferKB * 1024
	if size <= 0 {
		size = defaultBufferSize
	}
	return &SpeakerOutput{
		events:     make(chan Event, 32),
		bufferSize: size,
		volume:     1,
	}
}

// Events returns the device's lifecycle event stream.
func (o *SpeakerOutput) Events() <-chan Event {
	return o.events
}

// Load opens the stream at url and prepares it for playback, paused.
func (o *SpeakerOutput) Load(ctx context.Context, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("output closed")
	}

	o.unloadLocked()

	streamCtx, cancel := context.WithCancel(ctx)
	o.cancelLoad = cancel

	o.emit(Event{Kind: EventBufferStart})

	reader, err := streaming.NewReader(streamCtx, url, o.bufferSize)
	if err != nil {
		cancel()
		o.emit(Event{Kind: EventBufferEnd})
		return fmt.Errorf("failed to open stream: %w", err)
	}

	streamer, format, err := mp3.Decode(reader)
	if err != nil {
		reader.Close()
		cancel()
		o.emit(Event{Kind: EventBufferEnd})
		return fmt.Errorf("failed to decode stream: %w", err)
	}

	if !o.initialized {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/5)); err != nil {
			streamer.Close()
			reader.Close()
			cancel()
			o.emit(Event{Kind: EventBufferEnd})
			return fmt.Errorf("failed to initialize speaker: %w", err)
		}
		o.initialized = true
	}

	o.reader = reader
	o.streamer = streamer
	o.format = format
	o.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}
	o.vol = &effects.Volume{
		Streamer: o.ctrl,
		Base:     2,
		Volume:   volumeGain(o.volume),
		Silent:   o.volume == 0,
	}

	speaker.Play(beep.Seq(o.vol, beep.Callback(func() {
		o.emit(Event{Kind: EventEnded})
	})))

	if total := streamer.Len(); total > 0 {
		o.emit(Event{Kind: EventDuration, Seconds: format.SampleRate.D(total).Seconds()})
	}
	o.emit(Event{Kind: EventBufferEnd})

	o.monitorStop = make(chan struct{})
	go o.monitor(o.monitorStop, format)

	return nil
}

// Play resumes the loaded media.
func (o *SpeakerOutput) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctrl == nil {
		return fmt.Errorf("no media loaded")
	}

	speaker.Lock()
	o.ctrl.Paused = false
	speaker.Unlock()
	return nil
}

// Pause halts playback without unloading.
func (o *SpeakerOutput) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctrl == nil {
		return
	}

	speaker.Lock()
	o.ctrl.Paused = true
	speaker.Unlock()
}

// Seek repositions playback. Seeking a network-backed MP3 stream is only
// possible within already-buffered data; out-of-range seeks report an error.
func (o *SpeakerOutput) Seek(seconds float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.streamer == nil {
		return fmt.Errorf("no media loaded")
	}

	speaker.Lock()
	err := o.streamer.Seek(o.format.SampleRate.N(time.Duration(seconds * float64(time.Second))))
	speaker.Unlock()

	if err != nil {
		return fmt.Errorf("seek failed: %w", err)
	}
	return nil
}

// SetVolume adjusts the output gain, v in [0,1].
func (o *SpeakerOutput) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.volume = v
	if o.vol == nil {
		return
	}

	speaker.Lock()
	o.vol.Volume = volumeGain(v)
	o.vol.Silent = v == 0
	speaker.Unlock()
}

// Close tears down the device. Further calls are no-ops.
func (o *SpeakerOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	o.unloadLocked()
	return nil
}

// unloadLocked stops and releases the current media. Caller holds o.mu.
func (o *SpeakerOutput) unloadLocked() {
	if o.monitorStop != nil {
		close(o.monitorStop)
		o.monitorStop = nil
	}
	if o.ctrl != nil {
		speaker.Clear()
		o.ctrl = nil
		o.vol = nil
	}
	if o.streamer != nil {
		o.streamer.Close()
		o.streamer = nil
	}
	if o.reader != nil {
		o.reader.Close()
		o.reader = nil
	}
	if o.cancelLoad != nil {
		o.cancelLoad()
		o.cancelLoad = nil
	}
}

// monitor reports playback position twice a second and infers buffering
// stalls from a position that stops advancing while unpaused.
func (o *SpeakerOutput) monitor(stop <-chan struct{}, format beep.Format) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastPos := -1
	stuck := 0
	buffering := false

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			o.mu.Lock()
			if o.streamer == nil || o.ctrl == nil {
				o.mu.Unlock()
				return
			}

			speaker.Lock()
			pos := o.streamer.Position()
			paused := o.ctrl.Paused
			speaker.Unlock()
			o.mu.Unlock()

			if paused {
				stuck = 0
				continue
			}

			if pos == lastPos {
				stuck++
			} else {
				stuck = 0
			}
			lastPos = pos

			// Two stalled ticks in a row reads as a network stall.
			if stuck >= 2 && !buffering {
				buffering = true
				o.emit(Event{Kind: EventBufferStart})
			} else if stuck == 0 && buffering {
				buffering = false
				o.emit(Event{Kind: EventBufferEnd})
			}

			o.emit(Event{Kind: EventProgress, Seconds: format.SampleRate.D(pos).Seconds()})
		}
	}
}

// emit sends an event without blocking; a full channel drops the event.
func (o *SpeakerOutput) emit(event Event) {
	select {
	case o.events <- event:
	default:
	}
}

// volumeGain maps a linear [0,1] volume to the logarithmic gain scale beep's
// volume effect expects.
func volumeGain(v float64) float64 {
	return v*2 - 2
}
