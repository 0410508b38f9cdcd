package state

import (
	"fmt"
	"strconv"
	"strings"
)

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

func PageStep(height int, hasStatus bool) int {
	if height <= 0 {
		return 10
	}
	headerLines := 6
	if hasStatus {
		headerLines += 2
	}
	step := height - headerLines
	if step < 3 {
		step = 3
	}
	return step
}

func CenteredWindow(totalRows, cursor, height int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if height <= 0 || totalRows <= height {
		return 0, totalRows
	}
	cursor = ClampCursor(cursor, totalRows)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	maxStart := totalRows - height
	if start > maxStart {
		start = maxStart
	}
	return start, start + height
}

// ParsePageInput turns the jump prompt's text into a 1-based page number.
// total <= 0 means the page count is not known yet and only positivity is checked.
func ParsePageInput(input string, total int) (int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, fmt.Errorf("enter a page number")
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("not a page number: %q", trimmed)
	}
	if n < 1 {
		return 0, fmt.Errorf("page must be at least 1")
	}
	if total > 0 && n > total {
		return 0, fmt.Errorf("page must be between 1 and %d", total)
	}
	return n, nil
}

// PageLabel renders "N/M", or "N/?" before the total page count is known.
func PageLabel(current, total int) string {
	if current <= 0 {
		return "-"
	}
	if total <= 0 {
		return fmt.Sprintf("%d/?", current)
	}
	return fmt.Sprintf("%d/%d", current, total)
}
