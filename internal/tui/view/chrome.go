package view

import (
	"fmt"
	"strings"

	tuitheme "github.com/glabrego/charbrowser/internal/tui/theme"
)

type ToolbarParams struct {
	InDetail    bool
	HasPrevious bool
	HasNext     bool
}

// Toolbar lists the keys usable right now. Paging keys are left out at the
// bounds of the known page range.
func Toolbar(p ToolbarParams) string {
	if p.InDetail {
		return "j/k scroll | o open image | y copy URL | esc back | ? help"
	}
	parts := []string{"j/k move", "enter details"}
	switch {
	case p.HasPrevious && p.HasNext:
		parts = append(parts, "n/p page")
	case p.HasNext:
		parts = append(parts, "n next page")
	case p.HasPrevious:
		parts = append(parts, "p previous page")
	}
	parts = append(parts, ": jump", "r refresh", "? help")
	return strings.Join(parts, " | ")
}

// HelpLines is the full key reference shown by "?".
func HelpLines() []string {
	return []string{
		"j/k, up/down   move selection / scroll details",
		"g/G            first / last row",
		"enter          show character details",
		"n, right       next page",
		"p, left        previous page",
		":              jump to page",
		"r              reload current page",
		"o              open image URL in browser",
		"y              copy image URL",
		"esc            back / dismiss error",
		"?              toggle help",
		"q, ctrl+c      quit",
	}
}

type FooterParams struct {
	Page       string
	Shown      int
	RowsInUse  int
	RowsPooled int
	InDetail   bool
}

func Footer(p FooterParams, th tuitheme.Theme) string {
	mode := "list"
	if p.InDetail {
		mode = "detail"
	}
	parts := []string{
		th.MetaLabel.Render("mode") + " " + th.MetaValue.Render(mode),
		th.MetaLabel.Render("page") + " " + th.PageCount.Render(p.Page),
		th.MetaValue.Render(fmt.Sprintf("%d shown", p.Shown)),
		th.MetaLabel.Render("rows") + " " + th.MetaValue.Render(fmt.Sprintf("%d/%d", p.RowsInUse, p.RowsPooled)),
	}
	return strings.Join(parts, " • ")
}

// Message renders the one-line state bar. spinner is the current spinner
// frame and is only shown while loading.
func Message(loading bool, spinner string, hasWarning bool, status, warning string, th tuitheme.Theme) string {
	state := "idle"
	if loading {
		state = "loading"
	}
	if hasWarning {
		state = "warning"
	}
	main := "Ready"
	if status != "" {
		main = status
	} else if hasWarning {
		main = warning
	}
	stateLabel := th.StateIdle.Render("state")
	switch state {
	case "warning":
		stateLabel = th.StateWarn.Render("state")
	case "loading":
		stateLabel = th.StateLoad.Render("state")
		if spinner != "" {
			state = spinner + " " + state
		}
	}
	return fmt.Sprintf("%s: %s | %s", stateLabel, state, th.MetaValue.Render(main))
}

// ErrorPanel boxes a user-facing failure message. Width <= 0 lets lipgloss size it.
func ErrorPanel(message string, width int, th tuitheme.Theme) string {
	style := th.ErrorPanel
	if width > 4 {
		style = style.Width(width - 2)
	}
	return style.Render(message + "\n" + th.MetaLabel.Render("esc to dismiss"))
}
