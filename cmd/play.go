package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/aural-fm/aural/internal/models"
	"github.com/aural-fm/aural/internal/player"
	"github.com/aural-fm/aural/internal/shared"
	"github.com/urfave/cli/v3"
)

// Play streams liked tracks or a playlist from the terminal without the TUI.
//
// Plays through the queue and exits when it ends or on interrupt.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("playlist")
	shuffle := cmd.Bool("shuffle")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
		if tracks, err = st.LikedTracks(); err != nil {
			return fmt.Errorf("failed to load liked tracks: %w", err)
		}
	}

	if len(tracks) == 0 {
		r.writePlain("Nothing to play. Run: aural spotify import\n")
		return nil
	}

	output := player.NewSpeakerOutput(config.Player.BufferKB)
	p := player.New(player.Opts{
		Resolver:   r.resolver,
		Output:     output,
		Store:      st,
		Logger:     r.logger,
		Volume:     config.Player.Volume,
		RepeatMode: models.ParseRepeatMode(config.Player.RepeatMode),
	})
	defer p.Close()

	p.SetQueue(tracks)
	if shuffle {
		p.ToggleShuffle()
	}

	first, ok := p.Queue().At(0)
	if !ok {
		return shared.ErrNoTrack
	}
	if err := p.PlayTrack(ctx, first); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}

	var lastTrack string
	started := false

	for {
		select {
		case <-ctx.Done():
			r.writePlain("\nStopping.\n")
			return nil
		case state := <-p.Updates():
			if state.Err != nil {
				r.writePlain("⚠ %v\n", state.Err)
			}
			if state.Current != nil && state.Current.ID != lastTrack {
				lastTrack = state.Current.ID
				r.writePlain("♪ %s - %s [%s]\n",
					state.Current.Artist, state.Current.Title, shared.FormatDuration(state.Current.Duration))
			}
			if state.Playing {
				started = true
			}
			// queue exhausted: playback stopped and rewound after having played
			if started && !state.Playing && !state.Loading && !state.LoadingStream &&
				state.CurrentTime == 0 && state.Err == nil {
				r.writePlain("\nQueue finished.\n")
				return nil
			}
		}
	}
}
