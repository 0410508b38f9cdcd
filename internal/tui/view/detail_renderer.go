package view

import (
	"fmt"
	"strings"

	"github.com/glabrego/charbrowser/internal/api"
	"github.com/glabrego/charbrowser/internal/detail"
)

// ImageState describes the portrait slot of the detail pane. Image is nil
// until the loader has delivered it.
type ImageState struct {
	Loading bool
	Image   *api.Image
	Preview string
	Err     string
}

func DetailLines(
	v detail.View,
	episode EpisodeState,
	image ImageState,
	contentWidth int,
	horizontalMargin int,
	wrap WrapFunc,
) []string {
	lines := DetailMetaLines(v, episode, contentWidth, wrap)
	lines = appendImage(lines, image, contentWidth)
	return leftPadLines(lines, horizontalMargin)
}

func DetailMaxTop(linesLen, bodyHeight int) int {
	maxTop := linesLen - bodyHeight
	if maxTop < 0 {
		return 0
	}
	return maxTop
}

func RenderDetailLines(lines []string, top, maxLines int) string {
	if len(lines) == 0 {
		return ""
	}
	if top < 0 {
		top = 0
	}
	if top > len(lines)-1 {
		top = len(lines) - 1
	}
	end := len(lines)
	if maxLines > 0 && top+maxLines < end {
		end = top + maxLines
	}
	return strings.Join(lines[top:end], "\n") + "\n"
}

func appendImage(lines []string, image ImageState, contentWidth int) []string {
	imageLines := make([]string, 0, 4)
	switch {
	case image.Loading:
		imageLines = append(imageLines, "Loading image...")
	case image.Image != nil:
		imageLines = append(imageLines, fmt.Sprintf("Portrait: %dx%d %s", image.Image.Width, image.Image.Height, image.Image.Format))
		if raw := strings.TrimSpace(image.Preview); raw != "" {
			if ContainsKittyGraphicsEscape(image.Preview) {
				imageLines = append(imageLines, strings.TrimRight(image.Preview, "\r\n"))
			} else {
				imageLines = append(imageLines, centerLines(strings.Split(strings.TrimRight(image.Preview, "\r\n"), "\n"), contentWidth)...)
			}
		}
	}
	if errMsg := strings.TrimSpace(image.Err); errMsg != "" && !image.Loading {
		imageLines = append(imageLines, "Image preview unavailable: "+errMsg)
	}
	if len(imageLines) == 0 {
		return lines
	}
	out := make([]string, 0, len(lines)+len(imageLines)+1)
	out = append(out, lines...)
	out = append(out, "")
	return append(out, imageLines...)
}

func leftPadLines(lines []string, padding int) []string {
	if padding <= 0 || len(lines) == 0 {
		return lines
	}
	prefix := strings.Repeat(" ", padding)
	out := make([]string, len(lines))
	for i, line := range lines {
		if ContainsKittyGraphicsEscape(line) {
			out[i] = line
			continue
		}
		out[i] = prefix + line
	}
	return out
}

func centerLines(lines []string, width int) []string {
	if width <= 0 || len(lines) == 0 {
		return lines
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		visible := visibleLen(line)
		if visible >= width {
			out[i] = line
			continue
		}
		pad := (width - visible) / 2
		out[i] = strings.Repeat(" ", pad) + line
	}
	return out
}
