package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aural-fm/aural/internal/formatter"
	"github.com/aural-fm/aural/internal/models"
	"github.com/aural-fm/aural/internal/shared"
	"github.com/aural-fm/aural/internal/store"
	"github.com/urfave/cli/v3"
)

// LibraryPlaylists lists playlists stored in the local library.
func (r *Runner) LibraryPlaylists(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	config := r.loadConfig(cmd)
	db, st, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	playlists, err := st.Playlists()
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if useJSON {
		return r.writeJSON(playlists, pretty)
	}

	if len(playlists) == 0 {
		r.writePlain("No playlists imported yet. Run: aural spotify import\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Library Playlists (%d)", len(playlists)))
	for i, playlist := range playlists {
		r.writePlain("%d. %s (%d tracks)\n", i+1, playlist.Name, len(playlist.Tracks))
		r.writePlain("   ID: %s\n", playlist.ID)
	}

	return nil
}

// LibraryLiked lists liked tracks in the local library.
func (r *Runner) LibraryLiked(ctx context.Context, cmd *cli.Command) error {
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	config := r.loadConfig(cmd)
	db, st, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	tracks, err := st.LikedTracks()
	if err != nil {
		return fmt.Errorf("failed to list liked tracks: %w", err)
	}

	if useJSON {
		return r.writeJSON(tracks, pretty)
	}

	if len(tracks) == 0 {
		r.writePlain("No liked tracks yet.\n")
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Liked Tracks (%d)", len(tracks)))
	for i, track := range tracks {
		r.writePlain("%d. %s - %s [%s]\n", i+1, track.Artist, track.Title, shared.FormatDuration(track.Duration))
	}

	return nil
}

// LibraryExport writes a playlist to disk in the requested format.
//
// The special ID "liked" exports the liked tracks as a playlist.
func (r *Runner) LibraryExport(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	format := cmd.String("format")
	output := cmd.String("output")

	config := r.loadConfig(cmd)
	db, st, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	playlist, err := exportTarget(st, id)
	if err != nil {
		return err
	}

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(playlist, output)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		r.writePlain("✓ Tracks written to %s\n", result.TracksFile)
		r.writePlain("✓ Metadata written to %s\n", result.MetadataFile)
	case "md", "markdown":
		result, err := formatter.WriteMarkdownExport(playlist, output, playlist.CoverURL)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		r.writePlain("✓ Playlist exported to %s\n", result.Directory)
		for _, file := range result.Files {
			r.writePlain("  %s\n", file)
		}
	case "txt", "text":
		if output == "" {
			output = playlist.ID + ".txt"
		}
		path, err := formatter.WriteTextExport(playlist, output)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		r.writePlain("✓ Playlist exported to %s\n", path)
	case "json":
		data, err := formatter.ExportToJSON(playlist)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if output == "" {
			output = playlist.ID + ".json"
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		r.writePlain("✓ Playlist exported to %s\n", output)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}

	return nil
}

// LibraryLike marks a library track as liked.
func (r *Runner) LibraryLike(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")

	config := r.loadConfig(cmd)
	db, st, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	track, err := findTrack(st, id)
	if err != nil {
		return err
	}

	if err := st.SaveLiked(track); err != nil {
		return fmt.Errorf("failed to like track: %w", err)
	}

	r.writePlain("♥ %s - %s\n", track.Artist, track.Title)
	return nil
}

// LibraryUnlike removes a track from the liked list.
func (r *Runner) LibraryUnlike(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")

	config := r.loadConfig(cmd)
	db, st, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if !st.IsLiked(id) {
		return fmt.Errorf("%w: %s is not liked", shared.ErrTrackNotFound, id)
	}

	if err := st.RemoveLiked(id); err != nil {
		return fmt.Errorf("failed to unlike track: %w", err)
	}

	r.writePlain("✓ Removed %s from liked tracks\n", id)
	return nil
}

// LibraryCreate adds an empty named playlist to the library.
func (r *Runner) LibraryCreate(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("name")
	description := cmd.String("description")

	config := r.loadConfig(cmd)
	db, st, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	playlist := &models.Playlist{
		ID:          shared.GenerateID(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	if err := st.SavePlaylist(playlist); err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}

	r.writePlain("✓ Created playlist %s\n", playlist.Name)
	r.writePlain("  ID: %s\n", playlist.ID)
	return nil
}

// LibraryDelete removes a playlist from the library.
func (r *Runner) LibraryDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")

	config := r.loadConfig(cmd)
	db, st, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := st.Playlist(id); err != nil {
		return fmt.Errorf("failed to load playlist: %w", err)
	}

	if err := st.DeletePlaylist(id); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}

	r.writePlain("✓ Deleted playlist %s\n", id)
	return nil
}

// findTrack looks a track up by ID across liked tracks and playlists.
func findTrack(st *store.Store, id string) (models.Track, error) {
	liked, err := st.LikedTracks()
	if err != nil {
		return models.Track{}, fmt.Errorf("failed to load liked tracks: %w", err)
	}
	for _, track := range liked {
		if track.ID == id {
			return track, nil
		}
	}

	playlists, err := st.Playlists()
	if err != nil {
		return models.Track{}, fmt.Errorf("failed to list playlists: %w", err)
	}
	for _, playlist := range playlists {
		for _, track := range playlist.Tracks {
			if track.ID == id {
				return track, nil
			}
		}
	}

	return models.Track{}, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
}

// exportTarget loads the playlist to export, treating "liked" as a synthetic
// playlist of the liked tracks.
func exportTarget(st *store.Store, id string) (*models.Playlist, error) {
	if id == "liked" {
		tracks, err := st.LikedTracks()
		if err != nil {
			return nil, fmt.Errorf("failed to load liked tracks: %w", err)
		}
		return &models.Playlist{
			ID:        "liked",
			Name:      "Liked Tracks",
			Tracks:    tracks,
			CreatedAt: time.Now(),
		}, nil
	}

	playlist, err := st.Playlist(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load playlist: %w", err)
	}
	return playlist, nil
}
