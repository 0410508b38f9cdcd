// Package detail loads the per-character detail view progressively: text
// fields are reported at once, the portrait and the first episode name follow
// independently as they resolve.
package detail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/glabrego/charbrowser/internal/api"
	"github.com/glabrego/charbrowser/internal/cache"
)

const (
	DefaultTimeout = 10 * time.Second

	// FirstSeenUnknown is shown when a character has no episodes or the first
	// episode could not be resolved.
	FirstSeenUnknown = "Unknown"
)

// ErrSuperseded is returned by Load when a later Load or Cancel replaced it.
var ErrSuperseded = errors.New("detail request superseded")

type Fetcher interface {
	Fetch(ctx context.Context, url string) (api.Response, error)
}

// Presenter receives detail results. Callbacks for a superseded load are
// dropped; the image and episode callbacks may arrive in either order.
type Presenter interface {
	OnDetailReady(v View)
	OnImageReady(img api.Image)
	OnEpisodeNameReady(name string)
	OnDetailFailed(message string)
}

// View is the part of the detail screen available without any fetch.
type View struct {
	ID       int
	Name     string
	Status   string
	Species  string
	Gender   string
	Location string
	Origin   string
	ImageURL string
}

func ViewOf(c api.Character) View {
	return View{
		ID:       c.ID,
		Name:     c.Name,
		Status:   c.Status,
		Species:  c.Species,
		Gender:   c.Gender,
		Location: c.Location.Name,
		Origin:   c.Origin.Name,
		ImageURL: c.Image,
	}
}

type Option func(*Loader)

func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// flight is the context a shared fetch runs under. It is cancelled once no
// load is waiting on it any more.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

type Loader struct {
	fetcher   Fetcher
	images    cache.Store[string, api.Image]
	episodes  cache.Store[string, string]
	presenter Presenter
	timeout   time.Duration
	logger    *slog.Logger

	flights singleflight.Group

	flightMu sync.Mutex
	inflight map[string]*flight

	// emitMu orders presenter callbacks; it is taken before mu, never after.
	emitMu sync.Mutex

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func New(fetcher Fetcher, images cache.Store[string, api.Image], episodes cache.Store[string, string], presenter Presenter, opts ...Option) *Loader {
	l := &Loader{
		fetcher:   fetcher,
		images:    images,
		episodes:  episodes,
		presenter: presenter,
		timeout:   DefaultTimeout,
		logger:    slog.New(slog.DiscardHandler),
		inflight:  make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load shows c. It reports the View synchronously, then resolves the image and
// the first episode name concurrently and returns once both have settled.
// Failures are reported to the presenter and the first one is returned.
func (l *Loader) Load(ctx context.Context, c api.Character) error {
	episode, _ := c.FirstEpisode()

	// Claim this character's resources before superseding the previous load,
	// so a fetch both of them need survives the hand-over.
	release := l.hold(imageKey(c.Image), episodeKey(episode))
	defer release()

	l.mu.Lock()
	l.supersedeLocked()
	gen := l.gen
	loadCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()
	defer cancel()

	l.deliver(gen, func() { l.presenter.OnDetailReady(ViewOf(c)) })

	var g errgroup.Group
	g.Go(func() error { return l.loadImage(loadCtx, gen, c.Image) })
	g.Go(func() error { return l.loadFirstEpisode(loadCtx, gen, episode) })
	err := g.Wait()

	l.mu.Lock()
	current := gen == l.gen
	if current {
		l.cancel = nil
	}
	l.mu.Unlock()

	if !current {
		return fmt.Errorf("character %d: %w", c.ID, ErrSuperseded)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Cancel abandons the in-flight detail pair, if any.
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.supersedeLocked()
}

func (l *Loader) loadImage(ctx context.Context, gen uint64, url string) error {
	if url == "" {
		err := &api.DecodeError{Reason: api.ReasonEmpty, Resource: "image", Err: errors.New("character has no image")}
		l.fail(gen, "image", err)
		return err
	}
	if img, ok := l.images.Get(url); ok {
		l.deliver(gen, func() { l.presenter.OnImageReady(img) })
		return nil
	}

	v, err := l.shared(ctx, imageKey(url), func(fetchCtx context.Context) (any, error) {
		resp, err := l.fetcher.Fetch(fetchCtx, url)
		if err != nil {
			return nil, err
		}
		img, err := api.DecodeImage(url, resp)
		if err != nil {
			return nil, err
		}
		l.images.Put(url, img)
		return img, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		l.fail(gen, "image", err)
		return err
	}
	img := v.(api.Image)
	l.deliver(gen, func() { l.presenter.OnImageReady(img) })
	return nil
}

func (l *Loader) loadFirstEpisode(ctx context.Context, gen uint64, url string) error {
	if url == "" {
		l.deliver(gen, func() { l.presenter.OnEpisodeNameReady(FirstSeenUnknown) })
		return nil
	}
	if name, ok := l.episodes.Get(url); ok {
		l.deliver(gen, func() { l.presenter.OnEpisodeNameReady(name) })
		return nil
	}

	v, err := l.shared(ctx, episodeKey(url), func(fetchCtx context.Context) (any, error) {
		resp, err := l.fetcher.Fetch(fetchCtx, url)
		if err != nil {
			return nil, err
		}
		name, err := api.DecodeEpisode(resp.Body)
		if err != nil {
			return nil, err
		}
		l.episodes.Put(url, name)
		return name, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		l.fail(gen, "episode", err)
		l.deliver(gen, func() { l.presenter.OnEpisodeNameReady(FirstSeenUnknown) })
		return err
	}
	name := v.(string)
	l.deliver(gen, func() { l.presenter.OnEpisodeNameReady(name) })
	return nil
}

func imageKey(url string) string {
	if url == "" {
		return ""
	}
	return "image:" + url
}

func episodeKey(url string) string {
	if url == "" {
		return ""
	}
	return "episode:" + url
}

// shared runs fn once per key across concurrent callers. The fetch runs under
// the key's flight context, which outlives any single caller but is cancelled
// when the last caller stops waiting.
func (l *Loader) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	for retried := false; ; retried = true {
		f := l.join(key)
		ch := l.flights.DoChan(key, func() (any, error) {
			start := time.Now()
			v, err := fn(f.ctx)
			l.logger.Debug("detail resource fetched", "key", key, "err", err, "duration", time.Since(start))
			return v, err
		})

		select {
		case res := <-ch:
			l.leave(key, f)
			// A fetch its own waiters had already abandoned; start a fresh one once.
			if !retried && errors.Is(res.Err, context.Canceled) && ctx.Err() == nil {
				continue
			}
			return res.Val, res.Err
		case <-ctx.Done():
			l.leave(key, f)
			return nil, ctx.Err()
		}
	}
}

// hold keeps the flights of keys alive until the returned func is called.
// Empty keys are skipped.
func (l *Loader) hold(keys ...string) func() {
	held := make(map[string]*flight, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		held[key] = l.join(key)
	}
	return func() {
		for key, f := range held {
			l.leave(key, f)
		}
	}
}

func (l *Loader) join(key string) *flight {
	l.flightMu.Lock()
	defer l.flightMu.Unlock()
	f, ok := l.inflight[key]
	if !ok {
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		f = &flight{ctx: ctx, cancel: cancel}
		l.inflight[key] = f
	}
	f.waiters++
	return f
}

func (l *Loader) leave(key string, f *flight) {
	l.flightMu.Lock()
	defer l.flightMu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	f.cancel()
	if l.inflight[key] == f {
		delete(l.inflight, key)
	}
}

func (l *Loader) fail(gen uint64, what string, err error) {
	l.logger.Warn("detail resource failed", "resource", what, "err", err)
	l.deliver(gen, func() { l.presenter.OnDetailFailed(api.UserMessage(err)) })
}

// deliver runs report only if gen is still the current load. Reports are
// serialized, so a superseded load never reports after its successor.
func (l *Loader) deliver(gen uint64, report func()) {
	l.emitMu.Lock()
	defer l.emitMu.Unlock()
	l.mu.Lock()
	current := gen == l.gen
	l.mu.Unlock()
	if current {
		report()
	}
}

func (l *Loader) supersedeLocked() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
}
