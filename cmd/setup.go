package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aural-fm/aural/internal/models"
	"github.com/aural-fm/aural/internal/shared"
	"github.com/aural-fm/aural/internal/store"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if cmd.Bool("demo") {
		r.logger.Info("seeding demo library")
		if err := seedDemoLibrary(store.New(db, r.logger)); err != nil {
			return fmt.Errorf("failed to seed demo library: %w", err)
		}
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// demoTracks is a small starter catalog with directly playable samples, so
// the player works before any provider import. Seeding is keyed on fixed
// ids and safe to repeat.
func demoTracks() []models.Track {
	const defaultCover = "https://images.unsplash.com/photo-1511379938547-c1f69419868d?w=300&h=300&fit=crop"

	return []models.Track{
		{
			ID:       "demo-midnight-dreams",
			Title:    "Midnight Dreams",
			Artist:   "Luna Echo",
			Album:    "Echoes of Tomorrow",
			Duration: 245,
			CoverURL: "https://images.unsplash.com/photo-1614680376593-902f74cf0d41?w=300&h=300&fit=crop",
			AudioURL: "https://www.learningcontainer.com/wp-content/uploads/2020/02/Kalimba.mp3",
			Liked:    true,
			Source:   "demo",
		},
		{
			ID:       "demo-electric-pulse",
			Title:    "Electric Pulse",
			Artist:   "Neon Waves",
			Album:    "Digital Horizon",
			Duration: 198,
			CoverURL: "https://images.unsplash.com/photo-1470225620780-dba8ba36b745?w=300&h=300&fit=crop",
			AudioURL: "https://filesamples.com/samples/audio/mp3/sample1.mp3",
			Source:   "demo",
		},
		{
			ID:       "demo-ocean-breeze",
			Title:    "Ocean Breeze",
			Artist:   "Coastal Harmony",
			Album:    "Seaside Sessions",
			Duration: 312,
			CoverURL: "https://images.unsplash.com/photo-1493225457124-a3eb161ffa5f?w=300&h=300&fit=crop",
			AudioURL: "https://filesamples.com/samples/audio/mp3/sample2.mp3",
			Liked:    true,
			Source:   "demo",
		},
		{
			ID:       "demo-urban-symphony",
			Title:    "Urban Symphony",
			Artist:   "City Sounds",
			Album:    "Metropolitan Vibes",
			Duration: 267,
			CoverURL: defaultCover,
			AudioURL: "https://filesamples.com/samples/audio/mp3/sample3.mp3",
			Source:   "demo",
		},
		{
			ID:       "demo-stellar-journey",
			Title:    "Stellar Journey",
			Artist:   "Cosmic Travelers",
			Album:    "Beyond the Stars",
			Duration: 289,
			CoverURL: "https://images.unsplash.com/photo-1514320291840-2e0a9bf2a9ae?w=300&h=300&fit=crop",
			AudioURL: "https://www.learningcontainer.com/wp-content/uploads/2020/02/Kalimba.mp3",
			Liked:    true,
			Source:   "demo",
		},
	}
}

// seedDemoLibrary writes the demo playlist and likes its flagged tracks.
func seedDemoLibrary(st *store.Store) error {
	tracks := demoTracks()

	playlist := &models.Playlist{
		ID:          "demo-playlist",
		Name:        "Demo Tracks",
		Description: "Sample tracks to try the player before importing a library",
		Source:      "demo",
		Tracks:      tracks,
	}
	if err := st.SavePlaylist(playlist); err != nil {
		return err
	}

	for _, track := range tracks {
		if !track.Liked {
			continue
		}
		if err := st.SaveLiked(track); err != nil {
			return err
		}
	}
	return nil
}
