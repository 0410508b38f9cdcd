package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/glabrego/charbrowser/internal/api"
	"github.com/glabrego/charbrowser/internal/cache"
	"github.com/glabrego/charbrowser/internal/config"
	"github.com/glabrego/charbrowser/internal/detail"
	"github.com/glabrego/charbrowser/internal/pager"
	"github.com/glabrego/charbrowser/internal/pool"
	"github.com/glabrego/charbrowser/internal/storage"
)

const (
	imageNamespace   = "image"
	episodeNamespace = "episode"

	storageInitTimeout = 15 * time.Second
)

// Presenter is everything a session reports to the UI.
type Presenter interface {
	pager.Presenter
	detail.Presenter
}

// Fetcher is the transport shared by the paginator and the detail loader.
type Fetcher interface {
	PageURL(n int) string
	Fetch(ctx context.Context, url string) (api.Response, error)
}

type sessionOptions struct {
	logger     *slog.Logger
	httpClient *http.Client
	fetcher    Fetcher
}

type SessionOption func(*sessionOptions)

func WithLogger(l *slog.Logger) SessionOption {
	return func(o *sessionOptions) { o.logger = l }
}

func WithHTTPClient(c *http.Client) SessionOption {
	return func(o *sessionOptions) { o.httpClient = c }
}

// WithFetcher replaces the HTTP client entirely.
func WithFetcher(f Fetcher) SessionOption {
	return func(o *sessionOptions) { o.fetcher = f }
}

// Session owns one browsing session: its caches, paginator and detail loader.
// Nothing is shared between sessions unless a cache database is configured.
type Session struct {
	pager   *pager.Paginator
	details *detail.Loader
	repo    *storage.Repository
	logger  *slog.Logger
}

func NewSession(cfg config.Config, presenter Presenter, opts ...SessionOption) (*Session, error) {
	if presenter == nil {
		return nil, errors.New("presenter is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = api.NewClient(cfg.APIBaseURL, o.httpClient, o.logger.With("component", "api"))
	}

	s := &Session{logger: o.logger}

	var images cache.Store[string, api.Image] = cache.NewMap[string, api.Image]()
	var episodes cache.Store[string, string] = cache.NewMap[string, string]()
	if cfg.CacheDBPath != "" {
		repo, err := openRepository(cfg.CacheDBPath)
		if err != nil {
			return nil, err
		}
		s.repo = repo
		images = cache.NewBacked(images, repo, imageNamespace, ImageCodec, o.logger)
		episodes = cache.NewBacked(episodes, repo, episodeNamespace, cache.StringCodec, o.logger)
	}

	pages := cache.New[int, api.Page](cfg.PageCacheSize)
	s.pager = pager.New(fetcher, pages, presenter,
		pager.WithTimeout(cfg.RequestTimeout),
		pager.WithLogger(o.logger.With("component", "pager")),
	)
	s.details = detail.New(fetcher, images, episodes, presenter,
		detail.WithTimeout(cfg.RequestTimeout),
		detail.WithLogger(o.logger.With("component", "detail")),
	)

	o.logger.Info("session started", "api", cfg.APIBaseURL, "persistent_cache", cfg.CacheDBPath != "", "page_cache_size", cfg.PageCacheSize)
	return s, nil
}

func (s *Session) Pager() *pager.Paginator {
	return s.pager
}

func (s *Session) Details() *detail.Loader {
	return s.details
}

// Close cancels any in-flight work and releases the cache database.
func (s *Session) Close() error {
	s.pager.Cancel()
	s.details.Cancel()
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Close(); err != nil {
		return fmt.Errorf("close cache database: %w", err)
	}
	return nil
}

// NewRowPool builds the row pool with the configured size and growth policy.
// hook may be nil.
func NewRowPool[H comparable](cfg config.Config, factory pool.Factory[H], hook func(H)) (*pool.Pool[H], error) {
	opts := []pool.Option[H]{pool.WithGrow[H](cfg.PoolGrow)}
	if hook != nil {
		opts = append(opts, pool.WithAcquireHook(hook))
	}
	return pool.New(cfg.PoolSize, factory, opts...)
}

// ImageCodec persists the raw image bytes; dimensions are recovered on load.
var ImageCodec = cache.Codec[api.Image]{
	Encode: func(img api.Image) ([]byte, error) {
		if len(img.Data) == 0 {
			return nil, errors.New("image has no data")
		}
		return img.Data, nil
	},
	Decode: func(key string, data []byte) (api.Image, error) {
		return api.DecodeImage(key, api.Response{URL: key, Body: data})
	},
}

func openRepository(path string) (*storage.Repository, error) {
	repo, err := storage.NewRepository(path)
	if err != nil {
		return nil, fmt.Errorf("cache database init error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), storageInitTimeout)
	defer cancel()

	if err := repo.Init(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("cache database schema error: %w", err)
	}
	if err := repo.CheckWritable(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("cache database write check failed (%v), verify CHARBROWSER_CACHE_DB is writable: %s", err, path)
	}
	return repo, nil
}
