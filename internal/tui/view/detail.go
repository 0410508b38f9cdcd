package view

import (
	"fmt"
	"strings"

	"github.com/glabrego/charbrowser/internal/detail"
)

type WrapFunc func(string, int) []string

// EpisodeState is the first-episode line of the detail pane.
type EpisodeState struct {
	Loading bool
	Name    string
}

func DetailMetaLines(v detail.View, episode EpisodeState, width int, wrap WrapFunc) []string {
	lines := make([]string, 0, 16)
	lines = append(lines, wrap(v.Name, width)...)
	lines = append(lines, strings.Repeat("=", max(1, min(width, len(v.Name)))))
	lines = append(lines, "")

	lines = append(lines, fmt.Sprintf("ID: %d", v.ID))
	lines = append(lines, "Status: "+orUnknown(v.Status))
	lines = append(lines, "Species: "+orUnknown(v.Species))
	if v.Gender != "" {
		lines = append(lines, "Gender: "+v.Gender)
	}
	lines = append(lines, wrap("Location: "+orUnknown(v.Location), width)...)
	lines = append(lines, wrap("Origin: "+orUnknown(v.Origin), width)...)

	switch {
	case episode.Loading:
		lines = append(lines, "First Seen In: loading...")
	case episode.Name != "":
		lines = append(lines, wrap("First Seen In: "+episode.Name, width)...)
	}

	if v.ImageURL != "" {
		lines = append(lines, wrap("Image: "+v.ImageURL, width)...)
	}
	return lines
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return s
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
