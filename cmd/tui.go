package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/watchlist/internal/shared"
	"github.com/desertthunder/watchlist/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
//
// Logs go to the file named by log.tui_file while the UI runs.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil || r.router == nil {
		return fmt.Errorf("%w: session not initialized", shared.ErrServiceUnavailable)
	}
	if r.auth == nil || r.watchlist == nil {
		return fmt.Errorf("%w: backend clients not initialized", shared.ErrServiceUnavailable)
	}

	app := ui.NewApp(ctx, ui.Deps{
		Session:   r.session,
		Router:    r.router,
		Auth:      r.auth,
		Watchlist: r.watchlist,
		Logger:    r.logger,
		OpenURL:   r.openURL,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
