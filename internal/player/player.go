package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/aural-fm/aural/internal/models"
	"github.com/aural-fm/aural/internal/shared"
)

// TrackResolver converts a track's metadata into a playable audio URL.
type TrackResolver interface {
	Resolve(ctx context.Context, track models.Track) (string, error)
}

// Storage is the slice of the store the player persists its state through.
type Storage interface {
	Volume(fallback float64) float64
	SaveVolume(v float64) error
	CurrentTrack() *models.Track
	SaveCurrentTrack(track *models.Track) error
	ResolvedURL(trackID string) (string, bool)
	SaveResolvedURL(trackID, url string) error
	SaveLiked(track models.Track) error
	RemoveLiked(trackID string) error
	IsLiked(trackID string) bool
}

// State is a point-in-time snapshot of the player.
type State struct {
	Current *models.Track
	Playing bool
	// LoadingStream is set while the resolver is searching for an audio
	// source; Loading while the output device is buffering one.
	LoadingStream bool
	Loading       bool
	CurrentTime   float64
	Duration      float64
	Volume        float64
	RepeatMode    models.RepeatMode
	Shuffled      bool
	Err           error
}

// Player coordinates the queue, the source resolver, and the audio output.
// All methods are safe for concurrent use. It is the only writer of playback
// state; consumers read snapshots via [Player.State] or watch
// [Player.Updates].
type Player struct {
	mu sync.Mutex

	queue    *Queue
	resolver TrackResolver
	output   Output
	store    Storage
	logger   *log.Logger

	current       *models.Track
	playing       bool
	loadingStream bool
	loading       bool
	currentTime   float64
	duration      float64
	volume        float64
	repeatMode    models.RepeatMode
	err           error

	// attempt numbers each playTrack call; results arriving for an older
	// attempt are discarded so a rapid track change never resurrects the
	// previous track's load.
	attempt uint64

	updates chan State
	done    chan struct{}
	closed  bool
}

// Opts configures a [Player].
type Opts struct {
	Queue    *Queue
	Resolver TrackResolver
	Output   Output
	Store    Storage
	Logger   *log.Logger

	// Volume is the starting volume when the store holds none.
	Volume float64
	// RepeatMode is the starting repeat mode.
	RepeatMode models.RepeatMode
}

// New creates a player and restores volume and the last played track from
// the store. The restored track is selected but not played.
func New(opts Opts) *Player {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	queue := opts.Queue
	if queue == nil {
		queue = NewQueue(nil)
	}

	fallback := opts.Volume
	if fallback <= 0 || fallback > 1 {
		fallback = 1
	}

	p := &Player{
		queue:      queue,
		resolver:   opts.Resolver,
		output:     opts.Output,
		store:      opts.Store,
		logger:     logger,
		volume:     fallback,
		repeatMode: opts.RepeatMode,
		updates:    make(chan State, 16),
		done:       make(chan struct{}),
	}

	if p.store != nil {
		p.volume = clampVolume(p.store.Volume(fallback))
		p.current = p.store.CurrentTrack()
	}
	if p.output != nil {
		p.output.SetVolume(p.volume)
		go p.watchOutput()
	}

	return p
}

// Updates returns a channel of state snapshots, published after every state
// change. Sends never block; a slow consumer misses intermediate snapshots
// and catches up on the next one.
func (p *Player) Updates() <-chan State {
	return p.updates
}

// State returns a snapshot of the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot()
}

// Queue returns the player's queue.
func (p *Player) Queue() *Queue {
	return p.queue
}

// SetQueue replaces the queue contents.
func (p *Player) SetQueue(tracks []models.Track) {
	p.queue.Set(tracks)
	p.publish()
}

// PlayTrack resolves the track's audio source and starts playback. A call
// that arrives while an earlier PlayTrack is still resolving supersedes it:
// the earlier attempt's outcome is discarded.
//
// On resolution failure the player surfaces the error in its state and
// returns it; the previously playing track is already stopped.
func (p *Player) PlayTrack(ctx context.Context, track models.Track) error {
	p.mu.Lock()
	p.attempt++
	token := p.attempt
	copied := track
	p.current = &copied
	p.loadingStream = true
	p.loading = false
	p.playing = false
	p.currentTime = 0
	p.duration = 0
	p.err = nil
	p.mu.Unlock()
	p.publish()

	if p.store != nil {
		if err := p.store.SaveCurrentTrack(&copied); err != nil {
			p.logger.Warn("failed to persist current track", "error", err)
		}
	}

	url, err := p.resolveURL(ctx, track)

	p.mu.Lock()
	if token != p.attempt || p.closed {
		p.mu.Unlock()
		return nil
	}
	p.loadingStream = false
	if err != nil {
		p.err = err
		p.mu.Unlock()
		p.publish()
		return err
	}
	if p.output == nil {
		p.err = fmt.Errorf("%w: no output device", shared.ErrOutputClosed)
		err = p.err
		p.mu.Unlock()
		p.publish()
		return err
	}
	p.mu.Unlock()
	p.publish()

	if err := p.output.Load(ctx, url); err == nil {
		err = p.output.Play()
	} else {
		err = fmt.Errorf("failed to start playback: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if token != p.attempt || p.closed {
		return nil
	}
	if err != nil {
		p.err = err
		p.publishLocked()
		return err
	}
	p.playing = true
	p.publishLocked()
	return nil
}

// resolveURL returns the track's audio URL, from the store cache when a
// prior resolution is on record, otherwise via the resolver. Fresh results
// are cached.
func (p *Player) resolveURL(ctx context.Context, track models.Track) (string, error) {
	if track.HasAudio() {
		return track.AudioURL, nil
	}
	if p.store != nil {
		if url, ok := p.store.ResolvedURL(track.ID); ok {
			return url, nil
		}
	}
	if p.resolver == nil {
		return "", fmt.Errorf("%w: no resolver configured", shared.ErrNoSource)
	}

	url, err := p.resolver.Resolve(ctx, track)
	if err != nil {
		return "", err
	}
	if p.store != nil {
		if err := p.store.SaveResolvedURL(track.ID, url); err != nil {
			p.logger.Warn("failed to cache resolved url", "track", track.ID, "error", err)
		}
	}
	return url, nil
}

// PauseTrack halts playback, keeping the current track selected.
func (p *Player) PauseTrack() {
	p.mu.Lock()
	if !p.playing {
		p.mu.Unlock()
		return
	}
	p.playing = false
	p.mu.Unlock()

	if p.output != nil {
		p.output.Pause()
	}
	p.publish()
}

// TogglePlayPause pauses when playing and resumes when paused. A resume the
// output rejects leaves the player paused with the failure in its error
// state.
func (p *Player) TogglePlayPause() error {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return shared.ErrNoTrack
	}
	if p.playing {
		p.playing = false
		p.mu.Unlock()
		if p.output != nil {
			p.output.Pause()
		}
		p.publish()
		return nil
	}
	p.mu.Unlock()

	if p.output == nil {
		return fmt.Errorf("%w: no output device", shared.ErrOutputClosed)
	}
	err := p.output.Play()

	p.mu.Lock()
	if err != nil {
		p.err = fmt.Errorf("failed to resume playback: %w", err)
		err = p.err
	} else {
		p.playing = true
		p.err = nil
	}
	p.mu.Unlock()
	p.publish()
	return err
}

// SeekTo repositions playback to the given offset in seconds.
func (p *Player) SeekTo(seconds float64) error {
	if seconds < 0 {
		seconds = 0
	}
	if p.output == nil {
		return fmt.Errorf("%w: no output device", shared.ErrOutputClosed)
	}
	if err := p.output.Seek(seconds); err != nil {
		return err
	}

	p.mu.Lock()
	p.currentTime = seconds
	p.mu.Unlock()
	p.publish()
	return nil
}

// PlayNext advances to the next queued track. At the end of the queue it
// wraps to the first track when repeat-all is on, otherwise playback stops
// on the final track. Without a current track, or with a current track not
// in the queue, it does nothing.
func (p *Player) PlayNext(ctx context.Context) error {
	track, ok := p.nextTrack()
	if !ok {
		return nil
	}
	if track == nil {
		p.stopAtEnd()
		return nil
	}
	return p.PlayTrack(ctx, *track)
}

// nextTrack picks the successor of the current track in playable order. The
// nil, true return means the queue is exhausted with repeat off.
func (p *Player) nextTrack() (*models.Track, bool) {
	p.mu.Lock()
	current := p.current
	mode := p.repeatMode
	p.mu.Unlock()

	if current == nil {
		return nil, false
	}
	i := p.queue.IndexOf(current.ID)
	if i < 0 {
		return nil, false
	}

	if next, ok := p.queue.At(i + 1); ok {
		return &next, true
	}
	if mode == models.RepeatAll {
		if first, ok := p.queue.At(0); ok {
			return &first, true
		}
	}
	return nil, true
}

// stopAtEnd halts playback after the final queued track.
func (p *Player) stopAtEnd() {
	if p.output != nil {
		p.output.Pause()
	}

	p.mu.Lock()
	p.playing = false
	p.currentTime = 0
	p.mu.Unlock()
	p.publish()
}

// PlayPrevious steps back in the queue. More than three seconds into a
// track it restarts the track instead, and on the first queued track it
// restarts rather than wrapping to the end.
func (p *Player) PlayPrevious(ctx context.Context) error {
	p.mu.Lock()
	current := p.current
	elapsed := p.currentTime
	p.mu.Unlock()

	if current == nil {
		return nil
	}

	i := p.queue.IndexOf(current.ID)
	if elapsed > 3 || i <= 0 {
		return p.SeekTo(0)
	}

	prev, ok := p.queue.At(i - 1)
	if !ok {
		return p.SeekTo(0)
	}
	return p.PlayTrack(ctx, prev)
}

// ToggleRepeat cycles off, all, one and reports the new mode.
func (p *Player) ToggleRepeat() models.RepeatMode {
	p.mu.Lock()
	p.repeatMode = p.repeatMode.Next()
	mode := p.repeatMode
	p.mu.Unlock()
	p.publish()
	return mode
}

// ToggleShuffle flips shuffle on the queue and reports the new state.
func (p *Player) ToggleShuffle() bool {
	on := p.queue.ToggleShuffle()
	p.publish()
	return on
}

// ToggleLike flips the track's liked flag, persisting the change, and
// reports the new state.
func (p *Player) ToggleLike(track models.Track) (bool, error) {
	if p.store == nil {
		return false, fmt.Errorf("no store configured")
	}

	if p.store.IsLiked(track.ID) {
		if err := p.store.RemoveLiked(track.ID); err != nil {
			return true, err
		}
		p.publish()
		return false, nil
	}

	track.Liked = true
	if err := p.store.SaveLiked(track); err != nil {
		return false, err
	}
	p.publish()
	return true, nil
}

// SetVolume sets the volume, clamped to [0,1], and persists it. A failed
// write is logged and the in-memory volume kept.
func (p *Player) SetVolume(v float64) {
	v = clampVolume(v)

	p.mu.Lock()
	p.volume = v
	p.mu.Unlock()

	if p.output != nil {
		p.output.SetVolume(v)
	}
	if p.store != nil {
		if err := p.store.SaveVolume(v); err != nil {
			p.logger.Warn("failed to persist volume", "error", err)
		}
	}
	p.publish()
}

// Close stops playback and releases the output device.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.attempt++
	p.mu.Unlock()

	close(p.done)
	if p.output != nil {
		return p.output.Close()
	}
	return nil
}

// watchOutput consumes device events for the life of the player.
func (p *Player) watchOutput() {
	events := p.output.Events()
	for {
		select {
		case <-p.done:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			p.handleEvent(event)
		}
	}
}

func (p *Player) handleEvent(event Event) {
	switch event.Kind {
	case EventProgress:
		p.mu.Lock()
		p.currentTime = event.Seconds
		p.mu.Unlock()
		p.publish()
	case EventDuration:
		p.mu.Lock()
		p.duration = event.Seconds
		p.mu.Unlock()
		p.publish()
	case EventBufferStart:
		p.mu.Lock()
		p.loading = true
		p.mu.Unlock()
		p.publish()
	case EventBufferEnd:
		p.mu.Lock()
		p.loading = false
		p.mu.Unlock()
		p.publish()
	case EventEnded:
		p.handleEnded()
	case EventFatal:
		p.mu.Lock()
		p.playing = false
		p.loadingStream = false
		p.loading = false
		p.err = event.Err
		p.mu.Unlock()
		p.publish()
	}
}

// handleEnded decides what follows a track that played to completion:
// repeat-one replays it, anything else advances through the queue.
func (p *Player) handleEnded() {
	p.mu.Lock()
	mode := p.repeatMode
	current := p.current
	p.mu.Unlock()

	if current == nil {
		return
	}

	ctx := context.Background()
	if mode == models.RepeatOne {
		if err := p.PlayTrack(ctx, *current); err != nil {
			p.logger.Error("failed to replay track", "track", current.ID, "error", err)
		}
		return
	}
	if err := p.PlayNext(ctx); err != nil {
		p.logger.Error("failed to advance queue", "error", err)
	}
}

// snapshot builds a State copy. Caller holds p.mu.
func (p *Player) snapshot() State {
	state := State{
		Playing:       p.playing,
		LoadingStream: p.loadingStream,
		Loading:       p.loading,
		CurrentTime:   p.currentTime,
		Duration:      p.duration,
		Volume:        p.volume,
		RepeatMode:    p.repeatMode,
		Shuffled:      p.queue.Shuffled(),
		Err:           p.err,
	}
	if p.current != nil {
		copied := *p.current
		state.Current = &copied
	}
	return state
}

func (p *Player) publish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.publishLocked()
}

// publishLocked sends a snapshot without blocking. Caller holds p.mu.
func (p *Player) publishLocked() {
	select {
	case p.updates <- p.snapshot():
	default:
	}
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
