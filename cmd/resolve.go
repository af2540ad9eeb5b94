package main

import (
	"context"
	"fmt"

	"github.com/aural-fm/aural/internal/models"
	"github.com/aural-fm/aural/internal/shared"
	"github.com/urfave/cli/v3"
)

// Resolve performs a one-shot stream resolution and prints the result.
//
// Accepts a library track by --id, or an ad-hoc --title/--artist pair.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")
	title := cmd.String("title")
	artist := cmd.String("artist")
	pretty := cmd.Bool("pretty")

	var track models.Track
	if id != "" {
		config := r.loadConfig(cmd)
		db, st, err := r.openStore(config)
		if err != nil {
			return err
		}
		defer db.Close()

		if track, err = findTrack(st, id); err != nil {
			return err
		}
	} else {
		if title == "" {
			return fmt.Errorf("%w: either --id or --title is required", shared.ErrMissingArgument)
		}
		track = models.Track{
			ID:     shared.GenerateID(),
			Title:  title,
			Artist: artist,
		}
	}

	r.logger.Info("resolving stream", "track", track.Title, "artist", track.Artist)

	url, err := r.resolver.Resolve(ctx, track)
	if err != nil {
		return fmt.Errorf("resolution failed: %w", err)
	}

	return r.writeJSON(map[string]string{
		"trackId": track.ID,
		"title":   track.Title,
		"artist":  track.Artist,
		"url":     url,
	}, pretty)
}
