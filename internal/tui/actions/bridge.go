package actions

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/charbrowser/internal/api"
	"github.com/glabrego/charbrowser/internal/detail"
)

const bridgeBuffer = 64

// Bridge implements the paginator and detail presenters by forwarding every
// callback as a tea.Msg. Callbacks arrive from command goroutines; the update
// loop picks them up one at a time through Wait.
type Bridge struct {
	events    chan tea.Msg
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	detailID int
}

func NewBridge() *Bridge {
	return &Bridge{
		events: make(chan tea.Msg, bridgeBuffer),
		done:   make(chan struct{}),
	}
}

// Wait returns a command that delivers the next presenter event. The model
// re-arms it after every event. After Close it yields nil.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.events:
			return msg
		case <-b.done:
			return nil
		}
	}
}

// Close unblocks pending senders and waiters. Events sent afterwards are dropped.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() { close(b.done) })
}

func (b *Bridge) send(msg tea.Msg) {
	select {
	case <-b.done:
		return
	default:
	}
	select {
	case b.events <- msg:
	case <-b.done:
	}
}

func (b *Bridge) OnPageLoading(page int) {
	b.send(PageLoadingMsg{Page: page})
}

func (b *Bridge) OnPageLoaded(characters []api.Character, current, total int) {
	b.send(PageLoadedMsg{Characters: characters, Current: current, Total: total})
}

func (b *Bridge) OnPageFailed(page int, message string) {
	b.send(PageFailedMsg{Page: page, Message: message})
}

func (b *Bridge) OnDetailReady(v detail.View) {
	b.mu.Lock()
	b.detailID = v.ID
	b.mu.Unlock()
	b.send(DetailReadyMsg{View: v})
}

func (b *Bridge) OnImageReady(img api.Image) {
	b.send(ImageReadyMsg{Image: img})
}

func (b *Bridge) OnEpisodeNameReady(name string) {
	b.mu.Lock()
	id := b.detailID
	b.mu.Unlock()
	b.send(EpisodeNameMsg{ID: id, Name: name})
}

func (b *Bridge) OnDetailFailed(message string) {
	b.send(DetailFailedMsg{Message: message})
}
