package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aural-fm/aural/internal/models"
	"github.com/aural-fm/aural/internal/shared"
)

// Playlists returns all stored playlists, newest first.
func (s *Store) Playlists() ([]models.Playlist, error) {
	rows, err := s.db.Query(`
		SELECT id, name, description, cover_url, source, tracks, created_at
		FROM playlists
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		playlist, err := scanPlaylist(rows.Scan)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, playlist)
	}

	return playlists, rows.Err()
}

// Playlist retrieves a single playlist by id.
func (s *Store) Playlist(id string) (*models.Playlist, error) {
	row := s.db.QueryRow(`
		SELECT id, name, description, cover_url, source, tracks, created_at
		FROM playlists
		WHERE id = ?
	`, id)

	playlist, err := scanPlaylist(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

// SavePlaylist inserts or replaces a playlist. A playlist without an ID is
// assigned one.
func (s *Store) SavePlaylist(playlist *models.Playlist) error {
	if playlist.ID == "" {
		playlist.ID = shared.GenerateID()
	}
	if playlist.CreatedAt.IsZero() {
		playlist.CreatedAt = time.Now()
	}
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tracks, err := json.Marshal(playlist.Tracks)
	if err != nil {
		return fmt.Errorf("failed to encode playlist tracks: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO playlists (id, name, description, cover_url, source, tracks, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			cover_url = excluded.cover_url,
			source = excluded.source,
			tracks = excluded.tracks,
			updated_at = CURRENT_TIMESTAMP
	`, playlist.ID, playlist.Name, playlist.Description, playlist.CoverURL, playlist.Source, string(tracks), playlist.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save playlist: %w", err)
	}

	s.notifier.Publish(Change{Kind: ChangePlaylists, ID: playlist.ID})
	return nil
}

// DeletePlaylist removes a playlist by id.
func (s *Store) DeletePlaylist(id string) error {
	result, err := s.db.Exec("DELETE FROM playlists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	s.notifier.Publish(Change{Kind: ChangePlaylists, ID: id})
	return nil
}

func scanPlaylist(scan func(dest ...any) error) (models.Playlist, error) {
	var playlist models.Playlist
	var tracks string

	err := scan(&playlist.ID, &playlist.Name, &playlist.Description, &playlist.CoverURL, &playlist.Source, &tracks, &playlist.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return playlist, err
		}
		return playlist, fmt.Errorf("failed to scan playlist: %w", err)
	}

	if err := json.Unmarshal([]byte(tracks), &playlist.Tracks); err != nil {
		return playlist, fmt.Errorf("failed to decode playlist tracks: %w", err)
	}

	return playlist, nil
}
