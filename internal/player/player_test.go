package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aural-fm/aural/internal/models"
	"github.com/aural-fm/aural/internal/shared"
)

type fakeOutput struct {
	mu      sync.Mutex
	events  chan Event
	loads   []string
	seeks   []float64
	volume  float64
	pauses  int
	playErr error
	loadErr error
}

func newFakeOutput() *fakeOutput {
	return &fakeOutput{events: make(chan Event, 16)}
}

func (o *fakeOutput) Load(_ context.Context, url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.loadErr != nil {
		return o.loadErr
	}
	o.loads = append(o.loads, url)
	return nil
}

func (o *fakeOutput) Play() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.playErr
}

func (o *fakeOutput) Pause() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pauses++
}

func (o *fakeOutput) Seek(seconds float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seeks = append(o.seeks, seconds)
	return nil
}

func (o *fakeOutput) SetVolume(v float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.volume = v
}

func (o *fakeOutput) Events() <-chan Event { return o.events }
func (o *fakeOutput) Close() error         { return nil }

func (o *fakeOutput) loaded() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.loads))
	copy(out, o.loads)
	return out
}

func (o *fakeOutput) seeked() []float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]float64, len(o.seeks))
	copy(out, o.seeks)
	return out
}

type fakeResolver struct {
	mu    sync.Mutex
	urls  map[string]string
	errs  map[string]error
	gates map[string]chan struct{}
	calls []string
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		urls:  make(map[string]string),
		errs:  make(map[string]error),
		gates: make(map[string]chan struct{}),
	}
}

func (r *fakeResolver) Resolve(ctx context.Context, track models.Track) (string, error) {
	r.mu.Lock()
	r.calls = append(r.calls, track.ID)
	gate := r.gates[track.ID]
	r.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.errs[track.ID]; err != nil {
		return "", err
	}
	if url, ok := r.urls[track.ID]; ok {
		return url, nil
	}
	return "", fmt.Errorf("%w: no stream for %s", shared.ErrNoSource, track.ID)
}

func (r *fakeResolver) callCount(trackID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, id := range r.calls {
		if id == trackID {
			n++
		}
	}
	return n
}

type fakeStore struct {
	mu        sync.Mutex
	volume    float64
	hasVolume bool
	volumeErr error
	current   *models.Track
	resolved  map[string]string
	liked     map[string]models.Track
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		resolved: make(map[string]string),
		liked:    make(map[string]models.Track),
	}
}

func (s *fakeStore) Volume(fallback float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasVolume {
		return fallback
	}
	return s.volume
}

func (s *fakeStore) SaveVolume(v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.volumeErr != nil {
		return s.volumeErr
	}
	s.volume = v
	s.hasVolume = true
	return nil
}

func (s *fakeStore) CurrentTrack() *models.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *fakeStore) SaveCurrentTrack(track *models.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = track
	return nil
}

func (s *fakeStore) ResolvedURL(trackID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	url, ok := s.resolved[trackID]
	return url, ok
}

func (s *fakeStore) SaveResolvedURL(trackID, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolved[trackID] = url
	return nil
}

func (s *fakeStore) SaveLiked(track models.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liked[track.ID] = track
	return nil
}

func (s *fakeStore) RemoveLiked(trackID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.liked, trackID)
	return nil
}

func (s *fakeStore) IsLiked(trackID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.liked[trackID]
	return ok
}

type harness struct {
	player   *Player
	output   *fakeOutput
	resolver *fakeResolver
	store    *fakeStore
}

func newHarness(t *testing.T, tracks []models.Track) *harness {
	t.Helper()

	output := newFakeOutput()
	resolver := newFakeResolver()
	for _, track := range tracks {
		resolver.urls[track.ID] = "https://cdn.example.com/" + track.ID + ".mp3"
	}
	store := newFakeStore()

	p := New(Opts{
		Resolver: resolver,
		Output:   output,
		Store:    store,
		Logger:   shared.NewLogger(io.Discard),
		Volume:   0.7,
	})
	t.Cleanup(func() { p.Close() })
	p.SetQueue(tracks)

	return &harness{player: p, output: output, resolver: resolver, store: store}
}

// waitFor polls the player state until cond holds or the deadline passes.
func waitFor(t *testing.T, p *Player, what string, cond func(State) bool) State {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		state := p.State()
		if cond(state) {
			return state
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; state %+v", what, state)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPlayTrack(t *testing.T) {
	tracks := makeTracks(3)

	t.Run("resolves and starts playback", func(t *testing.T) {
		h := newHarness(t, tracks)

		if err := h.player.PlayTrack(context.Background(), tracks[0]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		state := h.player.State()
		if !state.Playing {
			t.Error("expected playing state")
		}
		if state.Loading {
			t.Error("expected loading to clear once playback starts")
		}
		if state.LoadingStream {
			t.Error("expected stream resolution to clear once playback starts")
		}
		if state.Current == nil || state.Current.ID != tracks[0].ID {
			t.Errorf("expected current track %s, got %+v", tracks[0].ID, state.Current)
		}
		if got := h.output.loaded(); len(got) != 1 || got[0] != "https://cdn.example.com/track-00.mp3" {
			t.Errorf("unexpected loads: %v", got)
		}
		if h.store.CurrentTrack() == nil {
			t.Error("expected current track persisted")
		}
	})

	t.Run("caches the resolved url", func(t *testing.T) {
		h := newHarness(t, tracks)
		ctx := context.Background()

		if err := h.player.PlayTrack(ctx, tracks[0]); err != nil {
			t.Fatalf("first play: %v", err)
		}
		if err := h.player.PlayTrack(ctx, tracks[1]); err != nil {
			t.Fatalf("second play: %v", err)
		}
		if err := h.player.PlayTrack(ctx, tracks[0]); err != nil {
			t.Fatalf("replay: %v", err)
		}

		if n := h.resolver.callCount(tracks[0].ID); n != 1 {
			t.Errorf("expected one resolution for a replayed track, got %d", n)
		}
	})

	t.Run("skips resolution when the track carries audio", func(t *testing.T) {
		h := newHarness(t, nil)
		track := models.Track{ID: "direct", Title: "Direct", Artist: "A", AudioURL: "https://cdn.example.com/direct.mp3"}

		if err := h.player.PlayTrack(context.Background(), track); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n := h.resolver.callCount("direct"); n != 0 {
			t.Errorf("expected no resolver calls, got %d", n)
		}
	})

	t.Run("surfaces resolution failure", func(t *testing.T) {
		h := newHarness(t, tracks)
		h.resolver.errs[tracks[0].ID] = fmt.Errorf("%w: all mirrors down", shared.ErrNoSource)

		err := h.player.PlayTrack(context.Background(), tracks[0])
		if !errors.Is(err, shared.ErrNoSource) {
			t.Fatalf("expected ErrNoSource, got %v", err)
		}

		state := h.player.State()
		if state.Playing {
			t.Error("expected playback stopped on failure")
		}
		if state.Loading || state.LoadingStream {
			t.Error("expected loading flags cleared on failure")
		}
		if !errors.Is(state.Err, shared.ErrNoSource) {
			t.Errorf("expected error surfaced in state, got %v", state.Err)
		}
	})

	t.Run("distinguishes resolving from buffering", func(t *testing.T) {
		h := newHarness(t, tracks)
		ctx := context.Background()

		gate := make(chan struct{})
		h.resolver.gates[tracks[0].ID] = gate

		done := make(chan error, 1)
		go func() { done <- h.player.PlayTrack(ctx, tracks[0]) }()

		state := waitFor(t, h.player, "stream resolution to begin", func(s State) bool {
			return s.LoadingStream
		})
		if state.Loading {
			t.Error("expected no device buffering while the resolver is searching")
		}
		if len(h.output.loaded()) != 0 {
			t.Error("expected no load before a source is found")
		}

		close(gate)
		if err := <-done; err != nil {
			t.Fatalf("play: %v", err)
		}
		if state := h.player.State(); state.LoadingStream {
			t.Error("expected stream resolution cleared once the source was found")
		}

		h.output.events <- Event{Kind: EventBufferStart}
		state = waitFor(t, h.player, "buffering to begin", func(s State) bool { return s.Loading })
		if state.LoadingStream {
			t.Error("expected buffering to leave stream resolution unset")
		}
		h.output.events <- Event{Kind: EventBufferEnd}
		waitFor(t, h.player, "buffering to end", func(s State) bool { return !s.Loading })
	})

	t.Run("a newer play supersedes a pending one", func(t *testing.T) {
		h := newHarness(t, tracks)
		ctx := context.Background()

		gate := make(chan struct{})
		h.resolver.gates[tracks[0].ID] = gate

		done := make(chan error, 1)
		go func() { done <- h.player.PlayTrack(ctx, tracks[0]) }()

		waitFor(t, h.player, "first attempt to start resolving", func(State) bool {
			return h.resolver.callCount(tracks[0].ID) == 1
		})

		if err := h.player.PlayTrack(ctx, tracks[1]); err != nil {
			t.Fatalf("superseding play: %v", err)
		}
		close(gate)

		if err := <-done; err != nil {
			t.Fatalf("expected superseded play to return nil, got %v", err)
		}

		state := h.player.State()
		if state.Current == nil || state.Current.ID != tracks[1].ID {
			t.Errorf("expected the newer track current, got %+v", state.Current)
		}
		for _, url := range h.output.loaded() {
			if url == "https://cdn.example.com/track-00.mp3" {
				t.Error("superseded attempt must not load its stream")
			}
		}
	})
}

func TestTogglePlayPause(t *testing.T) {
	tracks := makeTracks(2)

	t.Run("without a track", func(t *testing.T) {
		h := newHarness(t, tracks)
		if err := h.player.TogglePlayPause(); !errors.Is(err, shared.ErrNoTrack) {
			t.Errorf("expected ErrNoTrack, got %v", err)
		}
	})

	t.Run("pause and resume", func(t *testing.T) {
		h := newHarness(t, tracks)
		ctx := context.Background()

		if err := h.player.PlayTrack(ctx, tracks[0]); err != nil {
			t.Fatalf("play: %v", err)
		}

		if err := h.player.TogglePlayPause(); err != nil {
			t.Fatalf("pause: %v", err)
		}
		if h.player.State().Playing {
			t.Error("expected paused state")
		}

		if err := h.player.TogglePlayPause(); err != nil {
			t.Fatalf("resume: %v", err)
		}
		if !h.player.State().Playing {
			t.Error("expected playing state after resume")
		}
	})

	t.Run("rejected resume stays paused with the error", func(t *testing.T) {
		h := newHarness(t, tracks)

		if err := h.player.PlayTrack(context.Background(), tracks[0]); err != nil {
			t.Fatalf("play: %v", err)
		}
		h.player.PauseTrack()

		h.output.mu.Lock()
		h.output.playErr = errors.New("device busy")
		h.output.mu.Unlock()

		if err := h.player.TogglePlayPause(); err == nil {
			t.Fatal("expected resume failure")
		}

		state := h.player.State()
		if state.Playing {
			t.Error("expected player to remain paused")
		}
		if state.Err == nil {
			t.Error("expected failure recorded in state")
		}
	})
}

func TestPlayNext(t *testing.T) {
	tracks := makeTracks(3)

	t.Run("advances through the queue", func(t *testing.T) {
		h := newHarness(t, tracks)
		ctx := context.Background()

		if err := h.player.PlayTrack(ctx, tracks[0]); err != nil {
			t.Fatalf("play: %v", err)
		}
		if err := h.player.PlayNext(ctx); err != nil {
			t.Fatalf("next: %v", err)
		}

		state := h.player.State()
		if state.Current.ID != tracks[1].ID {
			t.Errorf("expected %s, got %s", tracks[1].ID, state.Current.ID)
		}
	})

	t.Run("stops on the last track with repeat off", func(t *testing.T) {
		h := newHarness(t, tracks)
		ctx := context.Background()

		if err := h.player.PlayTrack(ctx, tracks[2]); err != nil {
			t.Fatalf("play: %v", err)
		}
		if err := h.player.PlayNext(ctx); err != nil {
			t.Fatalf("next: %v", err)
		}

		state := h.player.State()
		if state.Playing {
			t.Error("expected playback stopped at queue end")
		}
		if state.Current.ID != tracks[2].ID {
			t.Errorf("expected the last track to stay selected, got %s", state.Current.ID)
		}
	})

	t.Run("wraps with repeat all", func(t *testing.T) {
		h := newHarness(t, tracks)
		ctx := context.Background()

		h.player.ToggleRepeat() // all
		if err := h.player.PlayTrack(ctx, tracks[2]); err != nil {
			t.Fatalf("play: %v", err)
		}
		if err := h.player.PlayNext(ctx); err != nil {
			t.Fatalf("next: %v", err)
		}

		if got := h.player.State().Current.ID; got != tracks[0].ID {
			t.Errorf("expected wrap to %s, got %s", tracks[0].ID, got)
		}
	})

	t.Run("advances past the first occurrence of a duplicated track", func(t *testing.T) {
		h := newHarness(t, tracks)
		ctx := context.Background()
		h.player.SetQueue([]models.Track{tracks[0], tracks[1], tracks[0]})

		if err := h.player.PlayTrack(ctx, tracks[0]); err != nil {
			t.Fatalf("play: %v", err)
		}
		if err := h.player.PlayNext(ctx); err != nil {
			t.Fatalf("next: %v", err)
		}

		if got := h.player.State().Current.ID; got != tracks[1].ID {
			t.Errorf("expected advance from the first occurrence to %s, got %s", tracks[1].ID, got)
		}
	})

	t.Run("no-op when the current track left the queue", func(t *testing.T) {
		h := newHarness(t, tracks)
		ctx := context.Background()

		if err := h.player.PlayTrack(ctx, tracks[0]); err != nil {
			t.Fatalf("play: %v", err)
		}
		h.player.SetQueue([]models.Track{tracks[1], tracks[2]})

		if err := h.player.PlayNext(ctx); err != nil {
			t.Fatalf("next: %v", err)
		}
		if got := h.player.State().Current.ID; got != tracks[0].ID {
			t.Errorf("expected current track unchanged, got %s", got)
		}
	})
}

func TestPlayPrevious(t *testing.T) {
	tracks := makeTracks(3)

	t.Run("steps back near the start of a track", func(t *testing.T) {
		h := newHarness(t, tracks)
		ctx := context.Background()

		if err := h.player.PlayTrack(ctx, tracks[1]); err != nil {
			t.Fatalf("play: %v", err)
		}
		if err := h.player.PlayPrevious(ctx); err != nil {
			t.Fatalf("previous: %v", err)
		}

		if got := h.player.State().Current.ID; got != tracks[0].ID {
			t.Errorf("expected %s, got %s", tracks[0].ID, got)
		}
	})

	t.Run("restarts when more than three seconds in", func(t *testing.T) {
		h := newHarness(t, tracks)
		ctx := context.Background()

		if err := h.player.PlayTrack(ctx, tracks[1]); err != nil {
			t.Fatalf("play: %v", err)
		}
		h.output.events <- Event{Kind: EventProgress, Seconds: 42}
		waitFor(t, h.player, "progress to apply", func(s State) bool { return s.CurrentTime == 42 })

		if err := h.player.PlayPrevious(ctx); err != nil {
			t.Fatalf("previous: %v", err)
		}

		state := h.player.State()
		if state.Current.ID != tracks[1].ID {
			t.Errorf("expected the same track, got %s", state.Current.ID)
		}
		if got := h.output.seeked(); len(got) != 1 || got[0] != 0 {
			t.Errorf("expected a single seek to 0, got %v", got)
		}
	})

	t.Run("restarts on the first track instead of wrapping", func(t *testing.T) {
		h := newHarness(t, tracks)
		ctx := context.Background()

		if err := h.player.PlayTrack(ctx, tracks[0]); err != nil {
			t.Fatalf("play: %v", err)
		}
		if err := h.player.PlayPrevious(ctx); err != nil {
			t.Fatalf("previous: %v", err)
		}

		state := h.player.State()
		if state.Current.ID != tracks[0].ID {
			t.Errorf("expected the first track to stay current, got %s", state.Current.ID)
		}
		if got := h.output.seeked(); len(got) != 1 || got[0] != 0 {
			t.Errorf("expected a restart seek, got %v", got)
		}
	})
}

func TestTrackEnded(t *testing.T) {
	tracks := makeTracks(3)

	t.Run("advances with repeat off", func(t *testing.T) {
		h := newHarness(t, tracks)

		if err := h.player.PlayTrack(context.Background(), tracks[0]); err != nil {
			t.Fatalf("play: %v", err)
		}

		h.output.events <- Event{Kind: EventEnded}
		waitFor(t, h.player, "queue to advance", func(s State) bool {
			return s.Current != nil && s.Current.ID == tracks[1].ID && s.Playing
		})
	})

	t.Run("replays the same track with repeat one", func(t *testing.T) {
		h := newHarness(t, tracks)

		h.player.ToggleRepeat() // all
		h.player.ToggleRepeat() // one
		if err := h.player.PlayTrack(context.Background(), tracks[1]); err != nil {
			t.Fatalf("play: %v", err)
		}

		h.output.events <- Event{Kind: EventEnded}
		waitFor(t, h.player, "the track to replay", func(State) bool {
			return len(h.output.loaded()) == 2
		})

		state := h.player.State()
		if state.Current.ID != tracks[1].ID {
			t.Errorf("expected the same track, got %s", state.Current.ID)
		}
		urls := h.output.loaded()
		if urls[0] != urls[1] {
			t.Errorf("expected the same stream reloaded, got %v", urls)
		}
	})

	t.Run("stops after the last track with repeat off", func(t *testing.T) {
		h := newHarness(t, tracks)

		if err := h.player.PlayTrack(context.Background(), tracks[2]); err != nil {
			t.Fatalf("play: %v", err)
		}

		h.output.events <- Event{Kind: EventEnded}
		waitFor(t, h.player, "playback to stop", func(s State) bool {
			return !s.Playing && s.Current.ID == tracks[2].ID
		})
	})
}

func TestVolumeAndLikes(t *testing.T) {
	tracks := makeTracks(2)

	t.Run("volume clamps and persists", func(t *testing.T) {
		h := newHarness(t, tracks)

		h.player.SetVolume(1.4)
		if got := h.player.State().Volume; got != 1 {
			t.Errorf("expected clamp to 1, got %v", got)
		}
		if got := h.store.Volume(0); got != 1 {
			t.Errorf("expected persisted volume 1, got %v", got)
		}

		h.player.SetVolume(-0.2)
		if got := h.player.State().Volume; got != 0 {
			t.Errorf("expected clamp to 0, got %v", got)
		}
	})

	t.Run("failed volume write keeps the in-memory value", func(t *testing.T) {
		h := newHarness(t, tracks)
		h.store.volumeErr = errors.New("disk full")

		h.player.SetVolume(0.3)
		if got := h.player.State().Volume; got != 0.3 {
			t.Errorf("expected in-memory volume 0.3, got %v", got)
		}
	})

	t.Run("restores persisted volume", func(t *testing.T) {
		store := newFakeStore()
		if err := store.SaveVolume(0.25); err != nil {
			t.Fatal(err)
		}

		p := New(Opts{Output: newFakeOutput(), Store: store, Volume: 0.7})
		defer p.Close()

		if got := p.State().Volume; got != 0.25 {
			t.Errorf("expected restored volume 0.25, got %v", got)
		}
	})

	t.Run("like round trip", func(t *testing.T) {
		h := newHarness(t, tracks)

		liked, err := h.player.ToggleLike(tracks[0])
		if err != nil || !liked {
			t.Fatalf("expected first toggle to like, got %v %v", liked, err)
		}
		if !h.store.IsLiked(tracks[0].ID) {
			t.Error("expected liked track persisted")
		}

		liked, err = h.player.ToggleLike(tracks[0])
		if err != nil || liked {
			t.Fatalf("expected second toggle to unlike, got %v %v", liked, err)
		}
		if h.store.IsLiked(tracks[0].ID) {
			t.Error("expected liked track removed")
		}
	})
}

func TestSession(t *testing.T) {
	tracks := makeTracks(4)
	h := newHarness(t, tracks)
	ctx := context.Background()

	if err := h.player.PlayTrack(ctx, tracks[0]); err != nil {
		t.Fatalf("play: %v", err)
	}

	if on := h.player.ToggleShuffle(); !on {
		t.Fatal("expected shuffle on")
	}
	if err := h.player.PlayNext(ctx); err != nil {
		t.Fatalf("next under shuffle: %v", err)
	}

	if on := h.player.ToggleShuffle(); on {
		t.Fatal("expected shuffle off")
	}
	if got := ids(h.player.Queue().Tracks()); !sameOrder(ids(tracks), got) {
		t.Fatalf("expected enqueued order restored, got %v", got)
	}

	h.player.ToggleRepeat()
	if err := h.player.PlayTrack(ctx, tracks[3]); err != nil {
		t.Fatalf("play last: %v", err)
	}
	if err := h.player.PlayNext(ctx); err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if got := h.player.State().Current.ID; got != tracks[0].ID {
		t.Fatalf("expected wrap to the first track, got %s", got)
	}
}

func TestWithoutOutput(t *testing.T) {
	tracks := makeTracks(2)
	resolver := newFakeResolver()
	for _, track := range tracks {
		resolver.urls[track.ID] = "https://cdn.example.com/" + track.ID + ".mp3"
	}

	p := New(Opts{
		Resolver: resolver,
		Store:    newFakeStore(),
		Logger:   shared.NewLogger(io.Discard),
	})
	defer p.Close()
	p.SetQueue(tracks)
	ctx := context.Background()

	if err := p.PlayTrack(ctx, tracks[1]); !errors.Is(err, shared.ErrOutputClosed) {
		t.Fatalf("expected ErrOutputClosed from play, got %v", err)
	}
	if state := p.State(); state.Playing || state.LoadingStream {
		t.Errorf("expected playback halted without a device, got %+v", state)
	}

	if err := p.TogglePlayPause(); !errors.Is(err, shared.ErrOutputClosed) {
		t.Errorf("expected ErrOutputClosed from resume, got %v", err)
	}
	if err := p.SeekTo(10); !errors.Is(err, shared.ErrOutputClosed) {
		t.Errorf("expected ErrOutputClosed from seek, got %v", err)
	}

	// The remaining controls degrade to no-ops rather than panicking.
	p.PauseTrack()
	if err := p.PlayNext(ctx); err != nil {
		t.Errorf("expected queue-end stop without a device, got %v", err)
	}
}
