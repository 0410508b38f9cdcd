package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/glabrego/charbrowser/internal/api"
)

// Formatter handles all console output of the list and show commands.
type Formatter struct {
	Writer io.Writer

	HeaderStyle    *color.Color
	ErrorStyle     *color.Color
	WarningStyle   *color.Color
	LabelStyle     *color.Color
	ValueStyle     *color.Color
	SecondaryStyle *color.Color
	AliveStyle     *color.Color
	DeadStyle      *color.Color
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{
		Writer:         w,
		HeaderStyle:    color.New(color.Bold, color.FgCyan),
		ErrorStyle:     color.New(color.FgRed),
		WarningStyle:   color.New(color.FgYellow),
		LabelStyle:     color.New(color.FgHiBlue),
		ValueStyle:     color.New(color.FgWhite),
		SecondaryStyle: color.New(color.FgHiBlack),
		AliveStyle:     color.New(color.FgGreen),
		DeadStyle:      color.New(color.FgRed),
	}
}

func (f *Formatter) PrintHeader(text string) {
	_, _ = f.HeaderStyle.Fprintln(f.Writer, text)
	f.PrintDivider()
}

func (f *Formatter) PrintDivider() {
	_, _ = fmt.Fprintln(f.Writer, strings.Repeat("-", 60))
}

func (f *Formatter) PrintError(text string) {
	_, _ = f.ErrorStyle.Fprintln(f.Writer, text)
}

func (f *Formatter) PrintWarning(text string) {
	_, _ = f.WarningStyle.Fprintln(f.Writer, text)
}

// PrintDetail prints a labeled value. Empty values print as "unknown".
func (f *Formatter) PrintDetail(label, value string) {
	if strings.TrimSpace(value) == "" {
		value = f.SecondaryStyle.Sprint("unknown")
	}
	_, _ = f.LabelStyle.Fprintf(f.Writer, "%s: ", label)
	_, _ = f.ValueStyle.Fprintln(f.Writer, value)
}

func (f *Formatter) FormatStatus(c api.Character) string {
	status := c.Status
	if strings.TrimSpace(status) == "" {
		status = "unknown"
	}
	switch {
	case c.IsAlive():
		return f.AliveStyle.Sprint(status)
	case c.IsDead():
		return f.DeadStyle.Sprint(status)
	default:
		return f.SecondaryStyle.Sprint(status)
	}
}

func (f *Formatter) PrintTable(headers []string, data [][]string) error {
	table := tablewriter.NewTable(f.Writer)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Header.Alignment.Global = tw.AlignLeft
		cfg.Row.Alignment.Global = tw.AlignLeft
		cfg.Header.Padding.Global = tw.Padding{Left: " ", Right: " "}
		cfg.Row.Padding.Global = tw.Padding{Left: " ", Right: " "}
	})
	table.Header(headers)
	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("build table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

// PrintCharacterTable prints one page of characters followed by a page footer.
func (f *Formatter) PrintCharacterTable(characters []api.Character, current, total int) error {
	if len(characters) == 0 {
		f.PrintWarning("No characters on this page.")
	} else {
		data := make([][]string, 0, len(characters))
		for _, c := range characters {
			data = append(data, []string{
				fmt.Sprintf("%d", c.ID),
				c.Name,
				f.FormatStatus(c),
				c.Location.Name,
				fmt.Sprintf("%d", len(c.Episodes)),
			})
		}
		if err := f.PrintTable([]string{"ID", "NAME", "STATUS", "LOCATION", "EPISODES"}, data); err != nil {
			return err
		}
	}
	_, _ = f.SecondaryStyle.Fprintf(f.Writer, "page %d/%d\n", current, total)
	return nil
}
