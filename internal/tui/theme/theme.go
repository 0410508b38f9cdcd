package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/glabrego/charbrowser/internal/api"
)

type Theme struct {
	Title      lipgloss.Style
	ModePill   lipgloss.Style
	Section    lipgloss.Style
	PageCount  lipgloss.Style
	ActiveLine lipgloss.Style
	MetaLabel  lipgloss.Style
	MetaValue  lipgloss.Style
	StateIdle  lipgloss.Style
	StateWarn  lipgloss.Style
	StateLoad  lipgloss.Style
	ErrorPanel lipgloss.Style
	Prompt     lipgloss.Style

	StatusAlive   lipgloss.Style
	StatusDead    lipgloss.Style
	StatusUnknown lipgloss.Style
}

func Default() Theme {
	cpMauve := lipgloss.Color("#cba6f7")
	cpRed := lipgloss.Color("#f38ba8")
	cpPeach := lipgloss.Color("#fab387")
	cpYellow := lipgloss.Color("#f9e2af")
	cpGreen := lipgloss.Color("#a6e3a1")
	cpTeal := lipgloss.Color("#94e2d5")
	cpLavender := lipgloss.Color("#b4befe")
	cpText := lipgloss.Color("#cdd6f4")
	cpSubtext0 := lipgloss.Color("#a6adc8")
	cpSubtext1 := lipgloss.Color("#bac2de")
	cpOverlay1 := lipgloss.Color("#7f849c")
	cpSurface0 := lipgloss.Color("#313244")

	return Theme{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(cpMauve),
		ModePill:   lipgloss.NewStyle().Foreground(cpLavender).Background(cpSurface0).Padding(0, 1),
		Section:    lipgloss.NewStyle().Bold(true).Foreground(cpTeal),
		PageCount:  lipgloss.NewStyle().Foreground(cpYellow).Bold(true),
		ActiveLine: lipgloss.NewStyle().Background(cpSurface0).Foreground(cpText),
		MetaLabel:  lipgloss.NewStyle().Foreground(cpOverlay1),
		MetaValue:  lipgloss.NewStyle().Foreground(cpSubtext1),
		StateIdle:  lipgloss.NewStyle().Foreground(cpGreen),
		StateWarn:  lipgloss.NewStyle().Foreground(cpRed),
		StateLoad:  lipgloss.NewStyle().Foreground(cpPeach),
		ErrorPanel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(cpRed).
			Foreground(cpRed).
			Padding(0, 1),
		Prompt:        lipgloss.NewStyle().Foreground(cpLavender).Bold(true),
		StatusAlive:   lipgloss.NewStyle().Foreground(cpGreen),
		StatusDead:    lipgloss.NewStyle().Foreground(cpRed),
		StatusUnknown: lipgloss.NewStyle().Foreground(cpSubtext0),
	}
}

// StyleStatus colours text by the character's life status.
func (t Theme) StyleStatus(c api.Character, text string) string {
	if text == "" {
		return text
	}
	switch {
	case c.IsAlive():
		return t.StatusAlive.Render(text)
	case c.IsDead():
		return t.StatusDead.Render(text)
	default:
		return t.StatusUnknown.Render(text)
	}
}

func (t Theme) RenderActiveLine(active bool, line string) string {
	if !active {
		return line
	}
	return t.ActiveLine.Render(line)
}
