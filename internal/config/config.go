package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIBaseURL     = "https://rickandmortyapi.com/api/character"
	defaultRequestTimeout = 10 * time.Second
	defaultPoolSize       = 10
	defaultLogPath        = "charbrowser.log"
)

// Config holds runtime settings for the browser.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	PoolSize       int
	PoolGrow       bool
	// PageCacheSize bounds the page cache; 0 keeps every loaded page.
	PageCacheSize int
	// CacheDBPath enables the sqlite resource cache when set.
	CacheDBPath string
	LogPath     string
	LogLevel    slog.Level
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	return Config{
		APIBaseURL:     defaultAPIBaseURL,
		RequestTimeout: defaultRequestTimeout,
		PoolSize:       defaultPoolSize,
		PoolGrow:       true,
		LogPath:        defaultLogPath,
		LogLevel:       slog.LevelInfo,
	}
}

// LoadFromEnv reads CHARBROWSER_* variables, after loading an optional .env
// file from the working directory. Variables already set in the process win
// over the file.
func LoadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if v := os.Getenv("CHARBROWSER_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("CHARBROWSER_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("CHARBROWSER_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}
	if v := os.Getenv("CHARBROWSER_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("CHARBROWSER_POOL_SIZE: %w", err)
		}
		cfg.PoolSize = n
	}
	if v := os.Getenv("CHARBROWSER_POOL_GROW"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("CHARBROWSER_POOL_GROW: %w", err)
		}
		cfg.PoolGrow = b
	}
	if v := os.Getenv("CHARBROWSER_PAGE_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("CHARBROWSER_PAGE_CACHE_SIZE: %w", err)
		}
		cfg.PageCacheSize = n
	}
	cfg.CacheDBPath = os.Getenv("CHARBROWSER_CACHE_DB")
	if v := os.Getenv("CHARBROWSER_LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv("CHARBROWSER_LOG_LEVEL"); v != "" {
		level, err := ParseLogLevel(v)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log level must be debug, info, warn or error: %s", s)
	}
	return level, nil
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("APIBaseURL is required")
	}
	if strings.HasSuffix(c.APIBaseURL, "/") {
		return fmt.Errorf("APIBaseURL must not end with '/': %s", c.APIBaseURL)
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("APIBaseURL must be an http or https URL: %s", c.APIBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("RequestTimeout must be positive: %s", c.RequestTimeout)
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("PoolSize must be at least 1: %d", c.PoolSize)
	}
	if c.PageCacheSize < 0 {
		return fmt.Errorf("PageCacheSize must not be negative: %d", c.PageCacheSize)
	}
	if c.LogPath == "" {
		return errors.New("LogPath is required")
	}
	return nil
}
