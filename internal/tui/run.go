package tui

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/charbrowser/internal/app"
	"github.com/glabrego/charbrowser/internal/config"
	"github.com/glabrego/charbrowser/internal/pool"
	"github.com/glabrego/charbrowser/internal/tui/actions"
	"github.com/glabrego/charbrowser/internal/tui/view"
)

// Run starts a browsing session and blocks until the program exits.
func Run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	bridge := actions.NewBridge()
	defer bridge.Close()

	session, err := app.NewSession(cfg, bridge, app.WithLogger(logger))
	if err != nil {
		return err
	}
	defer session.Close()

	rowLogger := logger.With("component", "rows")
	rows, err := app.NewRowPool(cfg, pool.FactoryFuncs[*view.Row]{
		CreateFn: func() *view.Row {
			rowLogger.Debug("row created")
			return view.NewRow()
		},
		DetachFn: (*view.Row).Reset,
	}, func(*view.Row) {
		rowLogger.Debug("row acquired")
	})
	if err != nil {
		return fmt.Errorf("row pool: %w", err)
	}

	model := NewModel(Deps{
		Navigator: session.Pager(),
		Loader:    session.Details(),
		Events:    bridge,
		Rows:      rows,
		Logger:    logger.With("component", "tui"),
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
