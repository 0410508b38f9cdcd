package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/glabrego/charbrowser/internal/api"
	"github.com/glabrego/charbrowser/internal/app"
)

const apiPageSize = 20

func newShowCommand(opts *rootOptions) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print the details of one character",
		Long: `show prints every field of a character along with its portrait size and
the name of the first episode it appears in. The character is looked up on the
page given by --page, which defaults to the page the API puts that ID on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id < 1 {
				return fmt.Errorf("invalid character ID: %s", args[0])
			}
			if !cmd.Flags().Changed("page") {
				page = defaultPageFor(id)
			}

			p := &consolePresenter{}
			session, err := app.NewSession(opts.cfg, p, app.WithLogger(opts.logger))
			if err != nil {
				return err
			}
			defer session.Close()

			ctx := cmd.Context()
			if err := session.Pager().RequestPage(ctx, page); err != nil {
				return pageError(page, p, err)
			}
			c, ok := p.find(id)
			if !ok {
				return fmt.Errorf("character %d not found on page %d", id, page)
			}

			loadErr := session.Details().Load(ctx, c)
			opts.logger.Debug("detail loaded", "id", id, "err", loadErr)

			f := NewFormatter(cmd.OutOrStdout())
			printDetail(f, p)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "page to look the character up on")
	return cmd
}

// defaultPageFor assumes the API's fixed page size and contiguous IDs.
func defaultPageFor(id int) int {
	return (id-1)/apiPageSize + 1
}

func printDetail(f *Formatter, p *consolePresenter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.view == nil {
		return
	}
	v := *p.view

	f.PrintHeader(v.Name)
	f.PrintDetail("ID", strconv.Itoa(v.ID))
	f.PrintDetail("Status", v.Status)
	f.PrintDetail("Species", v.Species)
	f.PrintDetail("Gender", v.Gender)
	f.PrintDetail("Location", v.Location)
	f.PrintDetail("Origin", v.Origin)
	f.PrintDetail("First Seen In", p.episode)
	f.PrintDetail("Image", v.ImageURL)
	if p.image != nil {
		f.PrintDetail("Portrait", portraitLabel(*p.image))
	}
	for _, message := range p.detailErrors {
		f.PrintWarning(message)
	}
}

func portraitLabel(img api.Image) string {
	label := fmt.Sprintf("%dx%d", img.Width, img.Height)
	if img.Format != "" {
		label += " " + img.Format
	}
	return label
}
