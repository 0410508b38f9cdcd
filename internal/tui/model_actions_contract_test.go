package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/charbrowser/internal/api"
	"github.com/glabrego/charbrowser/internal/detail"
	"github.com/glabrego/charbrowser/internal/pager"
	tuiactions "github.com/glabrego/charbrowser/internal/tui/actions"
)

func TestModelUpdate_HandlesAllActionMessageTypes(t *testing.T) {
	bridge := tuiactions.NewBridge()
	defer bridge.Close()

	m, _, _ := newTestModel(t)
	m.events = bridge
	view := detail.ViewOf(characters(1)[0])

	tests := []struct {
		name   string
		msg    tea.Msg
		rearms bool
	}{
		{name: "page loading", msg: tuiactions.PageLoadingMsg{Page: 1}, rearms: true},
		{name: "page loaded", msg: tuiactions.PageLoadedMsg{Characters: characters(1), Current: 1, Total: 42}, rearms: true},
		{name: "page failed", msg: tuiactions.PageFailedMsg{Page: 2, Message: "Request timed out, try again"}, rearms: true},
		{name: "detail ready", msg: tuiactions.DetailReadyMsg{View: view}, rearms: true},
		{name: "image ready", msg: tuiactions.ImageReadyMsg{Image: api.Image{Key: view.ImageURL}}, rearms: true},
		{name: "episode name", msg: tuiactions.EpisodeNameMsg{ID: 1, Name: "Pilot"}, rearms: true},
		{name: "detail failed", msg: tuiactions.DetailFailedMsg{Message: "No valid data received from the API"}, rearms: true},
		{name: "detail done", msg: tuiactions.DetailDoneMsg{ID: 1}},
		{name: "navigation done", msg: tuiactions.NavigationDoneMsg{}},
		{name: "invalid page", msg: tuiactions.NavigationDoneMsg{Err: &pager.InvalidPageError{Page: 50, Total: 42}}},
		{name: "preview success", msg: tuiactions.ImagePreviewSuccessMsg{Key: view.ImageURL, Preview: "██"}},
		{name: "preview error", msg: tuiactions.ImagePreviewErrorMsg{Key: view.ImageURL, Err: errors.New("chafa is not installed")}},
		{name: "open success", msg: tuiactions.OpenURLSuccessMsg{Status: "Opened image in browser", Opened: true}},
		{name: "open error", msg: tuiactions.OpenURLErrorMsg{Err: errors.New("could not open URL")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			updated, cmd := m.Update(tc.msg)
			if _, ok := updated.(Model); !ok {
				t.Fatalf("expected Model, got %T", updated)
			}
			if tc.rearms && cmd == nil {
				t.Fatal("expected presenter event to re-arm the event wait")
			}
			m = updated.(Model)
		})
	}

	if m.errMessage != "invalid page 50: must be between 1 and 42" {
		t.Fatalf("expected invalid page error to surface, got %q", m.errMessage)
	}
	if m.imagePreviewErr[view.ImageURL] != "chafa is not installed" {
		t.Fatalf("expected preview error recorded, got %q", m.imagePreviewErr[view.ImageURL])
	}
}
