package pager

import (
	"errors"
	"fmt"
)

// Phase is the paginator's position in its load cycle.
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is the current phase together with the page it concerns. Err is set
// only in the Failed phase.
type State struct {
	Phase Phase
	Page  int
	Err   error
}

// NavigationState holds the last loaded page and the total page count. Total
// is 0 until the first page has loaded and never changes afterwards.
type NavigationState struct {
	Current int
	Total   int
}

// Known reports whether the total page count has been learned.
func (n NavigationState) Known() bool {
	return n.Total > 0
}

// ErrSuperseded marks a request whose result was discarded because a newer
// request replaced it. It is bookkeeping, not a user-facing failure.
var ErrSuperseded = errors.New("page request superseded")

// InvalidPageError rejects a page outside [1, Total]. Total is 0 when unknown.
type InvalidPageError struct {
	Page  int
	Total int
}

func (e *InvalidPageError) Error() string {
	if e.Total > 0 {
		return fmt.Sprintf("invalid page %d: must be between 1 and %d", e.Page, e.Total)
	}
	return fmt.Sprintf("invalid page %d: must be at least 1", e.Page)
}

func IsInvalidPage(err error) bool {
	var ipe *InvalidPageError
	return errors.As(err, &ipe)
}
