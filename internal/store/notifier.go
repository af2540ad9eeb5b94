package store

import "sync"

// ChangeKind identifies which record family a store write touched.
type ChangeKind int

const (
	ChangeLiked ChangeKind = iota
	ChangePlaylists
	ChangeSettings
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeLiked:
		return "liked"
	case ChangePlaylists:
		return "playlists"
	default:
		return "settings"
	}
}

// Change describes a single store write.
type Change struct {
	Kind ChangeKind
	ID   string // record id when the write targeted one record
}

// Notifier fans store writes out to subscribers, replacing interval polling
// for out-of-band edits. Delivery is best-effort: a subscriber that has
// fallen behind misses updates rather than blocking writers.
type Notifier struct {
	mu          sync.RWMutex
	subscribers map[ChangeKind][]chan Change
}

// NewNotifier creates an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subscribers: make(map[ChangeKind][]chan Change)}
}

// Subscribe returns a channel receiving changes of the given kinds.
// With no kinds, the channel receives every change.
func (n *Notifier) Subscribe(kinds ...ChangeKind) <-chan Change {
	if len(kinds) == 0 {
		kinds = []ChangeKind{ChangeLiked, ChangePlaylists, ChangeSettings}
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	ch := make(chan Change, 16)
	for _, kind := range kinds {
		n.subscribers[kind] = append(n.subscribers[kind], ch)
	}
	return ch
}

// Unsubscribe removes a subscriber channel from every kind it was registered
// under. The channel is not closed; the subscriber owns its lifetime.
func (n *Notifier) Unsubscribe(ch <-chan Change) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for kind, subs := range n.subscribers {
		for i, sub := range subs {
			if sub == ch {
				n.subscribers[kind] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers a change to all subscribers of its kind without blocking.
func (n *Notifier) Publish(change Change) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, ch := range n.subscribers[change.Kind] {
		select {
		case ch <- change:
		default:
			// Subscriber is not keeping up, drop the update
		}
	}
}
