package main

import (
	"context"
	"os"
	"time"

	"github.com/aural-fm/aural/internal/resolver"
	"github.com/aural-fm/aural/internal/services"
	"github.com/aural-fm/aural/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotifyService services.Service
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify); err == nil {
			if token := config.Credentials.Spotify.Token(); token != nil {
				svc.SetToken(context.Background(), token)
			}
			spotifyService = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		Spotify:  spotifyService,
		Resolver: newResolver(config, logger),
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "aural",
		Usage:    "Stream and manage your music library from the terminal",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// newResolver builds the stream resolver from config, falling back to the
// built-in mirror registry when none are configured.
func newResolver(config *shared.Config, logger *log.Logger) *resolver.Resolver {
	var instances []resolver.Instance
	for _, mirror := range config.Resolver.Mirrors {
		dialect, err := resolver.ParseDialect(mirror.Dialect)
		if err != nil {
			logger.Warn("skipping mirror with unknown dialect", "url", mirror.URL, "dialect", mirror.Dialect)
			continue
		}
		instances = append(instances, resolver.Instance{BaseURL: mirror.URL, Dialect: dialect})
	}

	return resolver.New(resolver.Opts{
		Instances: instances,
		Timeout:   time.Duration(config.Resolver.TimeoutMS) * time.Millisecond,
		Logger:    logger,
	})
}
