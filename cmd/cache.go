package main

import (
	"context"
	"fmt"

	"github.com/aural-fm/aural/internal/models"
	"github.com/aural-fm/aural/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"
)

// prefetchRate throttles mirror requests during prefetch.
var prefetchRate = rate.Limit(2)

// CachePrefetch resolves stream URLs for library tracks ahead of playback.
func (r *Runner) CachePrefetch(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("playlist")

	config := r.loadConfig(cmd)
	db, st, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	var tracks []models.Track
	if playlistID != "" {
		playlist, err := st.Playlist(playlistID)
		if err != nil {
			return fmt.Errorf("failed to load playlist: %w", err)
		}
		tracks = playlist.Tracks
	} else {
		liked, err := st.LikedTracks()
		if err != nil {
			return fmt.Errorf("failed to load liked tracks: %w", err)
		}
		tracks = liked

		playlists, err := st.Playlists()
		if err != nil {
			return fmt.Errorf("failed to list playlists: %w", err)
		}
		seen := make(map[string]bool, len(tracks))
		for _, track := range tracks {
			seen[track.ID] = true
		}
		for _, playlist := range playlists {
			for _, track := range playlist.Tracks {
				if !seen[track.ID] {
					seen[track.ID] = true
					tracks = append(tracks, track)
				}
			}
		}
	}

	if len(tracks) == 0 {
		r.writePlain("Nothing to prefetch.\n")
		return nil
	}

	engine := tasks.NewLibraryEngine(nil, st, r.resolver, rate.NewLimiter(prefetchRate, 1))

	progress := make(chan tasks.ProgressUpdate, 64)
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, prefetchErr := engine.Prefetch(ctx, tracks, progress)
	close(progress)
	<-rendered

	if prefetchErr != nil {
		return fmt.Errorf("prefetch failed: %w", prefetchErr)
	}

	r.writePlainHeader("Prefetch Summary")
	r.writePlain("Resolved: %d\n", result.ResolvedCount)
	r.writePlain("Cached: %d\n", result.CachedCount)
	r.writePlain("Failed: %d\n", result.FailedCount)

	return nil
}

// CacheClear drops all cached stream URLs.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	db, st, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := st.ClearResolvedURLs(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	r.writePlain("✓ Resolved URL cache cleared\n")
	return nil
}
