package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glabrego/charbrowser/internal/app"
	"github.com/glabrego/charbrowser/internal/pager"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := &consolePresenter{}
			session, err := app.NewSession(opts.cfg, p, app.WithLogger(opts.logger))
			if err != nil {
				return err
			}
			defer session.Close()

			if err := session.Pager().RequestPage(cmd.Context(), page); err != nil {
				return pageError(page, p, err)
			}
			characters, current, total := p.page()
			f := NewFormatter(cmd.OutOrStdout())
			return f.PrintCharacterTable(characters, current, total)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number to print")
	return cmd
}

// pageError prefers the message already shown to the presenter, which is the
// user-facing form of err.
func pageError(page int, p *consolePresenter, err error) error {
	if pager.IsInvalidPage(err) {
		return err
	}
	p.mu.Lock()
	message := p.pageErr
	p.mu.Unlock()
	if message == "" {
		return fmt.Errorf("load page %d: %w", page, err)
	}
	return fmt.Errorf("load page %d: %w", page, errors.New(message))
}
