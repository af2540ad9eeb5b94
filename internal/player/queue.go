package player

import (
	"math/rand"
	"sync"

	"github.com/aural-fm/aural/internal/models"
)

// Queue holds the tracks scheduled for playback. It keeps two orderings: the
// order the tracks were enqueued in, and the order they actually play in.
// The two differ only while shuffle is on, so turning shuffle off restores
// the enqueued order exactly.
type Queue struct {
	mu       sync.RWMutex
	original []models.Track
	playable []models.Track
	shuffled bool
	rng      *rand.Rand
}

// NewQueue creates an empty queue. rng drives shuffling and may be seeded
// for reproducible tests; nil falls back to the shared global source.
func NewQueue(rng *rand.Rand) *Queue {
	return &Queue{rng: rng}
}

// Set replaces the queue contents. The current shuffle setting carries over:
// a shuffled queue reshuffles the new tracks.
func (q *Queue) Set(tracks []models.Track) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.original = make([]models.Track, len(tracks))
	copy(q.original, tracks)
	q.rebuild()
}

// Tracks returns the playable order as a copy.
func (q *Queue) Tracks() []models.Track {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]models.Track, len(q.playable))
	copy(out, q.playable)
	return out
}

// Len reports the number of queued tracks.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.playable)
}

// At returns the track at position i in playable order.
func (q *Queue) At(i int) (models.Track, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if i < 0 || i >= len(q.playable) {
		return models.Track{}, false
	}
	return q.playable[i], true
}

// IndexOf locates a track by id in playable order, or -1 when absent.
func (q *Queue) IndexOf(trackID string) int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for i, track := range q.playable {
		if track.ID == trackID {
			return i
		}
	}
	return -1
}

// Shuffled reports whether shuffle is on.
func (q *Queue) Shuffled() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.shuffled
}

// SetShuffle switches shuffle on or off. Enabling reshuffles from the
// enqueued order; disabling restores it.
func (q *Queue) SetShuffle(on bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.shuffled == on {
		return
	}
	q.shuffled = on
	q.rebuild()
}

// ToggleShuffle flips the shuffle setting and reports the new state.
func (q *Queue) ToggleShuffle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.shuffled = !q.shuffled
	q.rebuild()
	return q.shuffled
}

// rebuild recomputes the playable order from the enqueued order. Caller
// holds q.mu.
func (q *Queue) rebuild() {
	q.playable = make([]models.Track, len(q.original))
	copy(q.playable, q.original)

	if !q.shuffled {
		return
	}

	shuffle := rand.Shuffle
	if q.rng != nil {
		shuffle = q.rng.Shuffle
	}
	shuffle(len(q.playable), func(i, j int) {
		q.playable[i], q.playable[j] = q.playable[j], q.playable[i]
	})
}
