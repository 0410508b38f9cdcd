// Package pager drives page-by-page loading of the character list.
//
// A Paginator owns the navigation state and is the only writer of its page
// cache. At most one page fetch is in flight: a new request cancels the
// previous one and the stale result is dropped as ErrSuperseded.
package pager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/glabrego/charbrowser/internal/api"
	"github.com/glabrego/charbrowser/internal/cache"
)

const DefaultTimeout = 10 * time.Second

type Fetcher interface {
	PageURL(n int) string
	Fetch(ctx context.Context, url string) (api.Response, error)
}

// Presenter receives page results. Callbacks run on the goroutine that made
// the request, one at a time and never while the paginator holds its lock. A
// superseded request reports nothing once its successor has been issued.
type Presenter interface {
	OnPageLoading(page int)
	OnPageLoaded(characters []api.Character, current, total int)
	OnPageFailed(page int, message string)
}

type Option func(*Paginator)

// WithTimeout bounds each page fetch. Non-positive values keep the default.
func WithTimeout(d time.Duration) Option {
	return func(p *Paginator) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Paginator) {
		if l != nil {
			p.logger = l
		}
	}
}

type Paginator struct {
	fetcher   Fetcher
	pages     cache.Store[int, api.Page]
	presenter Presenter
	timeout   time.Duration
	logger    *slog.Logger

	// emitMu orders presenter callbacks; it is taken before mu, never after.
	emitMu sync.Mutex

	mu      sync.Mutex
	state   State
	settled State
	nav     NavigationState
	gen     uint64
	cancel  context.CancelFunc
}

func New(fetcher Fetcher, pages cache.Store[int, api.Page], presenter Presenter, opts ...Option) *Paginator {
	p := &Paginator{
		fetcher:   fetcher,
		pages:     pages,
		presenter: presenter,
		timeout:   DefaultTimeout,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RequestPage shows page n, from the cache when possible. It blocks until the
// page is loaded, fails, or is superseded by a later request.
func (p *Paginator) RequestPage(ctx context.Context, n int) error {
	p.mu.Lock()
	if err := p.validateLocked(n); err != nil {
		p.mu.Unlock()
		return err
	}

	p.supersedeLocked()
	gen := p.gen

	if page, ok := p.pages.Get(n); ok {
		p.nav.Current = n
		p.settleLocked(State{Phase: Loaded, Page: n})
		total := p.nav.Total
		p.mu.Unlock()

		p.logger.Debug("page served from cache", "page", n)
		p.emit(gen, func() { p.presenter.OnPageLoaded(page.Characters, n, total) })
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	p.cancel = cancel
	p.state = State{Phase: Loading, Page: n}
	p.mu.Unlock()

	p.emit(gen, func() { p.presenter.OnPageLoading(n) })
	start := time.Now()
	page, err := p.fetchPage(fetchCtx, n)

	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		p.logger.Debug("page request superseded", "page", n)
		return fmt.Errorf("page %d: %w", n, ErrSuperseded)
	}
	p.cancel = nil

	if err != nil && errors.Is(ctx.Err(), context.Canceled) {
		p.state = p.settled
		p.mu.Unlock()
		p.logger.Debug("page request cancelled by caller", "page", n)
		return ctx.Err()
	}

	if err != nil {
		p.settleLocked(State{Phase: Failed, Page: n, Err: err})
		p.mu.Unlock()

		p.logger.Warn("page request failed", "page", n, "err", err, "duration", time.Since(start))
		p.emit(gen, func() { p.presenter.OnPageFailed(n, api.UserMessage(err)) })
		return err
	}

	p.pages.Put(n, page)
	if p.nav.Total == 0 {
		p.nav.Total = page.TotalPages()
	}
	p.nav.Current = n
	p.settleLocked(State{Phase: Loaded, Page: n})
	total := p.nav.Total
	p.mu.Unlock()

	p.logger.Info("page loaded", "page", n, "total", total, "characters", len(page.Characters), "duration", time.Since(start))
	p.emit(gen, func() { p.presenter.OnPageLoaded(page.Characters, n, total) })
	return nil
}

// Next requests the page after the most recently requested one. It is a no-op
// while the total is unknown or on the last page.
func (p *Paginator) Next(ctx context.Context) error {
	return p.step(ctx, 1)
}

// Previous requests the page before the most recently requested one. It is a
// no-op on the first page.
func (p *Paginator) Previous(ctx context.Context) error {
	return p.step(ctx, -1)
}

// JumpTo requests an explicitly selected page. Unlike Next and Previous,
// out-of-range pages are rejected with an InvalidPageError.
func (p *Paginator) JumpTo(ctx context.Context, n int) error {
	p.mu.Lock()
	err := p.validateLocked(n)
	p.mu.Unlock()
	if err != nil {
		return err
	}
	return p.RequestPage(ctx, n)
}

// Refresh drops the current page from the cache and loads it again.
func (p *Paginator) Refresh(ctx context.Context) error {
	p.mu.Lock()
	n := p.cursorLocked()
	if n == 0 {
		n = 1
	}
	p.pages.Delete(n)
	p.mu.Unlock()

	return p.RequestPage(ctx, n)
}

// Cancel abandons an in-flight fetch. Its result will be reported as
// ErrSuperseded and the state returns to the last settled one.
func (p *Paginator) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Phase != Loading {
		return
	}
	p.supersedeLocked()
	p.state = p.settled
}

func (p *Paginator) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Paginator) Navigation() NavigationState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nav
}

func (p *Paginator) HasNext() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.targetLocked(1)
	return ok
}

func (p *Paginator) HasPrevious() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.targetLocked(-1)
	return ok
}

func (p *Paginator) step(ctx context.Context, delta int) error {
	p.mu.Lock()
	target, ok := p.targetLocked(delta)
	p.mu.Unlock()
	if !ok {
		return nil
	}
	return p.RequestPage(ctx, target)
}

func (p *Paginator) fetchPage(ctx context.Context, n int) (api.Page, error) {
	resp, err := p.fetcher.Fetch(ctx, p.fetcher.PageURL(n))
	if err != nil {
		return api.Page{}, err
	}
	return api.DecodePage(n, resp.Body)
}

func (p *Paginator) validateLocked(n int) error {
	if n < 1 || (p.nav.Total > 0 && n > p.nav.Total) {
		return &InvalidPageError{Page: n, Total: p.nav.Total}
	}
	return nil
}

// cursorLocked is the page navigation steps from: the most recently requested
// page, falling back to the last loaded one.
func (p *Paginator) cursorLocked() int {
	if p.state.Page > 0 {
		return p.state.Page
	}
	return p.nav.Current
}

func (p *Paginator) targetLocked(delta int) (int, bool) {
	if p.nav.Total == 0 {
		return 0, false
	}
	cursor := p.cursorLocked()
	if cursor == 0 {
		return 0, false
	}
	target := cursor + delta
	if target < 1 || target > p.nav.Total {
		return 0, false
	}
	return target, true
}

// emit runs report unless a later request has superseded gen. Holding emitMu
// across the check and the callback keeps a stale report from landing after
// its successor's.
func (p *Paginator) emit(gen uint64, report func()) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()
	p.mu.Lock()
	current := gen == p.gen
	p.mu.Unlock()
	if current {
		report()
	}
}

func (p *Paginator) supersedeLocked() {
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.gen++
}

func (p *Paginator) settleLocked(s State) {
	p.state = s
	p.settled = s
}
