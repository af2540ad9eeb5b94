// package models defines the data model for the aural player
package models

import (
	"fmt"
	"strings"
	"time"
)

// Track represents a single playable audio item with catalog metadata.
//
// AudioURL may be empty, meaning no direct stream is known yet and one must be
// resolved on first play. Source and SourceURI identify the provider a track
// was imported from ("spotify"), and are empty for local/mock catalog tracks.
type Track struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Album     string `json:"album"`
	Duration  int    `json:"duration"` // Catalog duration in seconds, not necessarily the resolved media's
	CoverURL  string `json:"coverUrl"`
	AudioURL  string `json:"audioUrl"`
	Liked     bool   `json:"liked,omitempty"` // Informational only; like-state is tracked by the store
	Source    string `json:"source,omitempty"`
	SourceURI string `json:"sourceUri,omitempty"`
}

// HasAudio reports whether the track already carries a playable stream URL.
func (t Track) HasAudio() bool {
	return strings.TrimSpace(t.AudioURL) != ""
}

// SearchQuery builds the human-meaningful query used for source resolution.
//
// The trailing qualifier biases mirror search results toward official
// audio-only uploads.
func (t Track) SearchQuery() string {
	return fmt.Sprintf("%s %s official audio", t.Title, t.Artist)
}

// Validate checks that the track carries the minimum fields required for
// playback and persistence.
func (t Track) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("track missing id")
	}
	if t.Title == "" {
		return fmt.Errorf("track %s missing title", t.ID)
	}
	if t.Duration < 0 {
		return fmt.Errorf("track %s has negative duration", t.ID)
	}
	return nil
}

// Playlist represents an ordered, user-visible collection of tracks.
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	Tracks      []Track   `json:"tracks"`
	Source      string    `json:"source,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Validate checks playlist identity and name.
func (p Playlist) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("playlist missing id")
	}
	if p.Name == "" {
		return fmt.Errorf("playlist %s missing name", p.ID)
	}
	return nil
}

// RepeatMode governs end-of-track and end-of-queue behavior.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatAll
	RepeatOne
)

// Next cycles off → all → one → off.
func (m RepeatMode) Next() RepeatMode {
	switch m {
	case RepeatOff:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	default:
		return RepeatOff
	}
}

func (m RepeatMode) String() string {
	switch m {
	case RepeatAll:
		return "all"
	case RepeatOne:
		return "one"
	default:
		return "off"
	}
}

// ParseRepeatMode maps the persisted string form back to a RepeatMode.
// Unknown values fall back to off.
func ParseRepeatMode(s string) RepeatMode {
	switch s {
	case "all":
		return RepeatAll
	case "one":
		return RepeatOne
	default:
		return RepeatOff
	}
}
