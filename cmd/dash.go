package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/ashfall/tdx/internal/shared"
	"github.com/ashfall/tdx/internal/sync"
	"github.com/ashfall/tdx/internal/ui"
)

// Dash launches the live dashboard. A background scheduler refreshes the
// state store while bubbletea owns the terminal; logs go to a file so they
// never corrupt the rendering.
func (r *Runner) Dash(ctx context.Context, cmd *cli.Command) error {
	interval := r.config.Telemetry.PollInterval()
	if poll := cmd.Int("poll"); poll > 0 {
		interval = time.Duration(poll) * time.Second
	}

	fileLogger, err := shared.NewFileLogger("./tmp/tdx-dash.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	journal, closeJournal, err := r.openJournal()
	if err != nil {
		fileLogger.Warn("cycle journal unavailable", "error", err)
	}
	defer closeJournal()

	store := sync.NewStore()
	coordinator := sync.NewCoordinator(sync.CoordinatorOpts{
		Client:  r.client,
		Store:   store,
		Journal: journal,
		Timeout: r.config.Telemetry.RequestTimeout(),
		Logger:  fileLogger,
	})

	scheduler := sync.NewScheduler(coordinator, interval, fileLogger)
	if err := scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer scheduler.Stop()

	model := ui.NewModel(ctx, store, scheduler)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running dashboard: %w", err)
	}

	return nil
}
