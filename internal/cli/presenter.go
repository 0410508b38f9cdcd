package cli

import (
	"sync"

	"github.com/glabrego/charbrowser/internal/api"
	"github.com/glabrego/charbrowser/internal/detail"
)

// consolePresenter collects paginator and loader callbacks for one command
// run. The detail loader reports from two goroutines, hence the lock.
type consolePresenter struct {
	mu sync.Mutex

	characters []api.Character
	current    int
	total      int
	pageErr    string

	view         *detail.View
	image        *api.Image
	episode      string
	detailErrors []string
}

func (p *consolePresenter) OnPageLoading(int) {}

func (p *consolePresenter) OnPageLoaded(characters []api.Character, current, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.characters = characters
	p.current, p.total = current, total
	p.pageErr = ""
}

func (p *consolePresenter) OnPageFailed(_ int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pageErr = message
}

func (p *consolePresenter) OnDetailReady(v detail.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view = &v
}

func (p *consolePresenter) OnImageReady(img api.Image) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.image = &img
}

func (p *consolePresenter) OnEpisodeNameReady(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.episode = name
}

func (p *consolePresenter) OnDetailFailed(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.detailErrors = append(p.detailErrors, message)
}

// page returns the last loaded page.
func (p *consolePresenter) page() (characters []api.Character, current, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.characters, p.current, p.total
}

func (p *consolePresenter) find(id int) (api.Character, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.characters {
		if c.ID == id {
			return c, true
		}
	}
	return api.Character{}, false
}
