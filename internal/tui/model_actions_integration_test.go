package tui

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/charbrowser/internal/app"
	"github.com/glabrego/charbrowser/internal/config"
	tuiactions "github.com/glabrego/charbrowser/internal/tui/actions"
)

func newCharacterServer(t *testing.T) *httptest.Server {
	t.Helper()
	var avatar bytes.Buffer
	if err := png.Encode(&avatar, image.NewGray(image.Rect(0, 0, 8, 6))); err != nil {
		t.Fatalf("encode avatar: %v", err)
	}

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/api/character", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"info":{"count":6,"pages":3},"results":[`+
			`{"id":%[1]s1,"name":"Rick %[1]s","status":"Alive","species":"Human","location":{"name":"Earth"},"origin":{"name":"Earth"},"image":"%[2]s/avatar/%[1]s1.png","episode":["%[2]s/api/episode/1"]},`+
			`{"id":%[1]s2,"name":"Morty %[1]s","status":"Dead","species":"Human","location":{"name":"Earth"},"origin":{"name":"Earth"},"image":"%[2]s/avatar/%[1]s2.png","episode":[]}]}`,
			page, server.URL)
	})
	mux.HandleFunc("/avatar/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(avatar.Bytes())
	})
	mux.HandleFunc("/api/episode/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"name":"Pilot"}`))
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// eventPump feeds queued presenter events into the model, the way the
// program's re-armed wait command does.
type eventPump struct {
	bridge  *tuiactions.Bridge
	pending chan tea.Msg
	waiting bool
}

func newEventPump(bridge *tuiactions.Bridge) *eventPump {
	return &eventPump{bridge: bridge, pending: make(chan tea.Msg, 1)}
}

func (p *eventPump) drain(t *testing.T, m Model) Model {
	t.Helper()
	for {
		if !p.waiting {
			p.waiting = true
			go func() { p.pending <- p.bridge.Wait()() }()
		}
		select {
		case msg := <-p.pending:
			p.waiting = false
			updated, _ := m.Update(msg)
			m = updated.(Model)
		case <-time.After(200 * time.Millisecond):
			return m
		}
	}
}

func TestModelKeypressFlows_DriveSessionThroughBridge(t *testing.T) {
	server := newCharacterServer(t)
	cfg := config.Default()
	cfg.APIBaseURL = server.URL + "/api/character"
	cfg.RequestTimeout = 2 * time.Second

	bridge := tuiactions.NewBridge()
	defer bridge.Close()
	pump := newEventPump(bridge)
	session, err := app.NewSession(cfg, bridge)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer session.Close()

	m := NewModel(Deps{
		Navigator: session.Pager(),
		Loader:    session.Details(),
		Events:    bridge,
		Rows:      newRowPool(t, cfg.PoolSize, cfg.PoolGrow),
	})
	m.renderImageFn = nil

	m, _ = runCmd(t, m, tuiactions.RequestPageCmd(session.Pager(), 1))
	m = pump.drain(t, m)
	if len(m.visible) != 2 || m.total != 3 {
		t.Fatalf("expected first page bound, got %d rows of %d pages", len(m.visible), m.total)
	}

	m, _ = runKey(t, m, runes("n"))
	m = pump.drain(t, m)
	m, _ = runKey(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = pump.drain(t, m)

	if m.current != 2 || m.total != 3 {
		t.Fatalf("expected page 2 of 3, got %d/%d", m.current, m.total)
	}
	out := plain(m.View())
	for _, want := range []string{"Rick 2", "Status: Alive", "First Seen In: Pilot", "Portrait: 8x6 png"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view, got:\n%s", want, out)
		}
	}
	if got := m.rows.InUse(); got != 2 {
		t.Fatalf("expected only the current page's rows in use, got %d", got)
	}
}

func runKey(t *testing.T, m Model, key tea.KeyMsg) (Model, tea.Msg) {
	t.Helper()
	updated, cmd := m.Update(key)
	return runCmd(t, updated.(Model), cmd)
}

// runCmd executes cmd synchronously and applies its result. Presenter events
// it produced stay queued on the bridge.
func runCmd(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Msg) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	updated, _ := m.Update(msg)
	return updated.(Model), msg
}
