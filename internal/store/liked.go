package store

import (
	"encoding/json"
	"fmt"

	"github.com/aural-fm/aural/internal/models"
)

// LikedTracks returns all liked tracks in like order (oldest first).
func (s *Store) LikedTracks() ([]models.Track, error) {
	rows, err := s.db.Query("SELECT payload FROM liked_tracks ORDER BY liked_at, track_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query liked tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan liked track: %w", err)
		}

		var track models.Track
		if err := json.Unmarshal([]byte(payload), &track); err != nil {
			s.logger.Warn("skipping unreadable liked track record", "err", err)
			continue
		}
		track.Liked = true
		tracks = append(tracks, track)
	}

	return tracks, rows.Err()
}

// SaveLiked adds a track to the liked set. Re-liking an already-liked track
// refreshes its stored payload without moving it in like order.
func (s *Store) SaveLiked(track models.Track) error {
	if err := track.Validate(); err != nil {
		return fmt.Errorf("refusing to like invalid track: %w", err)
	}

	track.Liked = true
	payload, err := json.Marshal(track)
	if err != nil {
		return fmt.Errorf("failed to encode liked track: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO liked_tracks (track_id, payload) VALUES (?, ?)
		ON CONFLICT(track_id) DO UPDATE SET payload = excluded.payload
	`, track.ID, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save liked track: %w", err)
	}

	s.notifier.Publish(Change{Kind: ChangeLiked, ID: track.ID})
	return nil
}

// RemoveLiked removes a track from the liked set by id. Removing a track that
// is not liked is a no-op.
func (s *Store) RemoveLiked(trackID string) error {
	if _, err := s.db.Exec("DELETE FROM liked_tracks WHERE track_id = ?", trackID); err != nil {
		return fmt.Errorf("failed to remove liked track: %w", err)
	}

	s.notifier.Publish(Change{Kind: ChangeLiked, ID: trackID})
	return nil
}

// IsLiked reports whether a track id is in the liked set.
func (s *Store) IsLiked(trackID string) bool {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM liked_tracks WHERE track_id = ?)", trackID).Scan(&exists)
	return err == nil && exists
}
