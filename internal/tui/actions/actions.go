// Package actions turns paginator and detail-loader work into bubbletea
// commands and messages.
package actions

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/charbrowser/internal/api"
	"github.com/glabrego/charbrowser/internal/detail"
	"github.com/glabrego/charbrowser/internal/pager"
)

type Navigator interface {
	RequestPage(ctx context.Context, n int) error
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	JumpTo(ctx context.Context, n int) error
	Refresh(ctx context.Context) error
	HasNext() bool
	HasPrevious() bool
}

type DetailLoader interface {
	Load(ctx context.Context, c api.Character) error
}

type PageLoadingMsg struct {
	Page int
}

type PageLoadedMsg struct {
	Characters []api.Character
	Current    int
	Total      int
}

type PageFailedMsg struct {
	Page    int
	Message string
}

type DetailReadyMsg struct {
	View detail.View
}

type ImageReadyMsg struct {
	Image api.Image
}

// EpisodeNameMsg carries the first episode name of the character whose
// detail was reported last, identified by ID.
type EpisodeNameMsg struct {
	ID   int
	Name string
}

type DetailFailedMsg struct {
	Message string
}

// NavigationDoneMsg reports the return of a paginator call. Results already
// delivered through the presenter are not repeated here, so Err is only set
// for errors the presenter never saw, such as an invalid page.
type NavigationDoneMsg struct {
	Err error
}

type DetailDoneMsg struct {
	ID  int
	Err error
}

type ImagePreviewSuccessMsg struct {
	Key     string
	Preview string
}

type ImagePreviewErrorMsg struct {
	Key string
	Err error
}

type OpenURLSuccessMsg struct {
	Status string
	Opened bool
}

type OpenURLErrorMsg struct {
	Err error
}

func RequestPageCmd(nav Navigator, n int) tea.Cmd {
	return navigate(func(ctx context.Context) error { return nav.RequestPage(ctx, n) })
}

func NextCmd(nav Navigator) tea.Cmd {
	return navigate(nav.Next)
}

func PreviousCmd(nav Navigator) tea.Cmd {
	return navigate(nav.Previous)
}

func JumpCmd(nav Navigator, n int) tea.Cmd {
	return navigate(func(ctx context.Context) error { return nav.JumpTo(ctx, n) })
}

func RefreshCmd(nav Navigator) tea.Cmd {
	return navigate(nav.Refresh)
}

// navigate runs a paginator call off the update loop. The paginator applies
// its own fetch timeout, so the context here is never cancelled.
func navigate(call func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		err := call(context.Background())
		if err == nil || !pager.IsInvalidPage(err) {
			return NavigationDoneMsg{}
		}
		return NavigationDoneMsg{Err: err}
	}
}

func LoadDetailCmd(loader DetailLoader, c api.Character) tea.Cmd {
	return func() tea.Msg {
		err := loader.Load(context.Background(), c)
		if errors.Is(err, detail.ErrSuperseded) {
			err = nil
		}
		return DetailDoneMsg{ID: c.ID, Err: err}
	}
}

func ImagePreviewCmd(img api.Image, width int, renderFn func([]byte, int) (string, error)) tea.Cmd {
	return func() tea.Msg {
		if renderFn == nil {
			return ImagePreviewErrorMsg{Key: img.Key, Err: fmt.Errorf("image preview is disabled")}
		}
		preview, err := renderFn(img.Data, width)
		if err != nil {
			return ImagePreviewErrorMsg{Key: img.Key, Err: err}
		}
		return ImagePreviewSuccessMsg{Key: img.Key, Preview: preview}
	}
}

func OpenURLCmd(url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Opened image in browser", Opened: true}
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Could not open browser, URL copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not open URL or copy to clipboard")}
	}
}

func CopyURLCmd(url string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "URL copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not copy URL to clipboard")}
	}
}
