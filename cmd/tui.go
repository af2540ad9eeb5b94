package main

import (
	"context"
	"fmt"

	"github.com/aural-fm/aural/internal/models"
	"github.com/aural-fm/aural/internal/player"
	"github.com/aural-fm/aural/internal/shared"
	"github.com/aural-fm/aural/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal player.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/aural-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	db, st, err := r.openStore(config)
	if err != nil {
		return err
	}
	defer db.Close()

	output := player.NewSpeakerOutput(config.Player.BufferKB)
	p := player.New(player.Opts{
		Resolver:   newResolver(config, fileLogger),
		Output:     output,
		Store:      st,
		Logger:     fileLogger,
		Volume:     config.Player.Volume,
		RepeatMode: models.ParseRepeatMode(config.Player.RepeatMode),
	})
	defer p.Close()

	model := ui.NewModel(ctx, p, st)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
