package view

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	tuitheme "github.com/glabrego/charbrowser/internal/tui/theme"

	"github.com/glabrego/charbrowser/internal/api"
)

var reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)

type RowLineParams struct {
	Character   api.Character
	ShowNumbers bool
	VisiblePos  int
	Active      bool
	Selected    bool
	Width       int
}

func RenderRowLine(p RowLineParams, th tuitheme.Theme) string {
	cursorMarker := " "
	if p.Active {
		cursorMarker = ">"
	}
	selectedMarker := " "
	if p.Selected {
		selectedMarker = "*"
	}

	prefix := fmt.Sprintf("  %s%s ", cursorMarker, selectedMarker)
	if p.ShowNumbers {
		prefix = fmt.Sprintf("  %s%s%2d. ", cursorMarker, selectedMarker, p.VisiblePos+1)
	}
	statusLabel := "[" + StatusLabel(p.Character) + "]"
	available := p.Width - visibleLen(prefix) - 1 - visibleLen(statusLabel)
	if available < 1 {
		available = 1
	}

	label := truncateRunes(RowLabel(p.Character), available)
	gap := p.Width - visibleLen(prefix) - visibleLen(label) - visibleLen(statusLabel)
	if gap < 1 {
		gap = 1
	}
	return th.RenderActiveLine(p.Active, prefix+label+strings.Repeat(" ", gap)+th.StyleStatus(p.Character, statusLabel))
}

// RowLabel is "Name · Species", falling back to a placeholder for unnamed characters.
func RowLabel(c api.Character) string {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = "(unnamed)"
	}
	if species := strings.TrimSpace(c.Species); species != "" {
		return name + " · " + species
	}
	return name
}

func StatusLabel(c api.Character) string {
	status := strings.TrimSpace(c.Status)
	if status == "" {
		return "unknown"
	}
	return status
}

func truncateRunes(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return strings.Repeat(".", maxLen)
	}
	runes := []rune(s)
	return string(runes[:maxLen-3]) + "..."
}

func visibleLen(s string) int {
	return utf8.RuneCountInString(stripANSIText(s))
}

func stripANSIText(s string) string {
	return reANSICodes.ReplaceAllString(s, "")
}
