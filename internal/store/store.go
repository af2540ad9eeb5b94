package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aural-fm/aural/internal/models"
	"github.com/charmbracelet/log"
)

// Setting keys for the keyed-record table.
const (
	keyVolume       = "player_volume"
	keyCurrentTrack = "current_track"
)

// Store provides keyed persistence for the player: liked tracks, playlists,
// player settings, and the resolved-URL cache.
//
// Every successful write publishes a [Change] through the attached [Notifier]
// so interested views can react without polling. Writes are fire-and-forget
// from the player's perspective: the player logs a failed write and keeps its
// in-memory state.
type Store struct {
	db       *sql.DB
	logger   *log.Logger
	notifier *Notifier
}

// New creates a Store on top of an open database connection.
// The logger may be nil, in which case persistence failures are silent.
func New(db *sql.DB, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(nil)
	}
	return &Store{
		db:       db,
		logger:   logger,
		notifier: NewNotifier(),
	}
}

// Notifier returns the change notifier for subscribing to store writes.
func (s *Store) Notifier() *Notifier {
	return s.notifier
}

// Volume returns the persisted player volume, or the provided fallback when
// no volume has been saved yet.
func (s *Store) Volume(fallback float64) float64 {
	raw, err := s.setting(keyVolume)
	if err != nil {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// SaveVolume persists the player volume.
func (s *Store) SaveVolume(v float64) error {
	if err := s.putSetting(keyVolume, strconv.FormatFloat(v, 'f', -1, 64)); err != nil {
		return err
	}
	s.notifier.Publish(Change{Kind: ChangeSettings})
	return nil
}

// CurrentTrack returns the persisted current track, or nil when none is saved.
func (s *Store) CurrentTrack() *models.Track {
	raw, err := s.setting(keyCurrentTrack)
	if err != nil || raw == "" {
		return nil
	}

	var track models.Track
	if err := json.Unmarshal([]byte(raw), &track); err != nil {
		s.logger.Warn("discarding unreadable current track record", "err", err)
		return nil
	}
	return &track
}

// SaveCurrentTrack persists the current track, or clears the record when the
// track is nil.
func (s *Store) SaveCurrentTrack(track *models.Track) error {
	if track == nil {
		if _, err := s.db.Exec("DELETE FROM settings WHERE key = ?", keyCurrentTrack); err != nil {
			return fmt.Errorf("failed to clear current track: %w", err)
		}
		s.notifier.Publish(Change{Kind: ChangeSettings})
		return nil
	}

	payload, err := json.Marshal(track)
	if err != nil {
		return fmt.Errorf("failed to encode current track: %w", err)
	}
	if err := s.putSetting(keyCurrentTrack, string(payload)); err != nil {
		return err
	}
	s.notifier.Publish(Change{Kind: ChangeSettings})
	return nil
}

// ResolvedURL returns the cached stream URL for a track id, if any.
//
// The cache decouples resolution results from the track records themselves:
// the same id appearing in several lists shares one resolved URL.
func (s *Store) ResolvedURL(trackID string) (string, bool) {
	var url string
	err := s.db.QueryRow("SELECT url FROM resolved_urls WHERE track_id = ?", trackID).Scan(&url)
	if err != nil {
		return "", false
	}
	return url, true
}

// SaveResolvedURL caches a resolved stream URL for a track id, replacing any
// previous entry.
func (s *Store) SaveResolvedURL(trackID, url string) error {
	_, err := s.db.Exec(`
		INSERT INTO resolved_urls (track_id, url) VALUES (?, ?)
		ON CONFLICT(track_id) DO UPDATE SET url = excluded.url, resolved_at = CURRENT_TIMESTAMP
	`, trackID, url)
	if err != nil {
		return fmt.Errorf("failed to cache resolved url: %w", err)
	}
	return nil
}

// ClearResolvedURLs empties the resolution cache.
func (s *Store) ClearResolvedURLs() error {
	if _, err := s.db.Exec("DELETE FROM resolved_urls"); err != nil {
		return fmt.Errorf("failed to clear resolved urls: %w", err)
	}
	return nil
}

func (s *Store) setting(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) putSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}
