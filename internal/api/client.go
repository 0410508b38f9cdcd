package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "https://rickandmortyapi.com/api/character"

	maxBodyBytes = 8 * 1024 * 1024
	userAgent    = "charbrowser/1.0"
)

// Client performs single GET round trips. It never retries and never caches.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// PageURL returns the list endpoint URL for page n.
func (c *Client) PageURL(n int) string {
	q := make(url.Values)
	q.Set("page", strconv.Itoa(n))
	return c.baseURL + "?" + q.Encode()
}

// Fetch issues exactly one GET for rawURL. Cancelling ctx aborts the request
// and the returned error satisfies errors.Is(err, context.Canceled).
func (c *Client) Fetch(ctx context.Context, rawURL string) (Response, error) {
	req, err := c.newRequest(ctx, rawURL)
	if err != nil {
		return Response{}, err
	}

	requestID := uuid.NewString()
	start := time.Now()
	c.logger.Debug("fetch start", "request_id", requestID, "url", rawURL)

	resp, err := c.http.Do(req)
	if err != nil {
		fe := &FetchError{Reason: classifyTransportError(ctx, err), URL: rawURL, Err: err}
		c.logger.Debug("fetch failed", "request_id", requestID, "url", rawURL, "reason", fe.Reason, "err", err, "duration", time.Since(start))
		return Response{}, fe
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Debug("fetch bad status", "request_id", requestID, "url", rawURL, "status", resp.StatusCode, "body", strings.TrimSpace(string(body)))
		return Response{}, &FetchError{Reason: ReasonProtocol, URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		reason := ReasonProtocol
		if classifyTransportError(ctx, err) == ReasonTimeout {
			reason = ReasonTimeout
		}
		return Response{}, &FetchError{Reason: reason, URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if len(body) > maxBodyBytes {
		return Response{}, &FetchError{Reason: ReasonProtocol, URL: rawURL, Err: fmt.Errorf("response exceeds %d bytes", maxBodyBytes)}
	}

	c.logger.Debug("fetch done", "request_id", requestID, "url", rawURL, "status", resp.StatusCode, "bytes", len(body), "duration", time.Since(start))
	return Response{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, &FetchError{Reason: ReasonProtocol, URL: rawURL, Err: errors.New("invalid URL")}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, image/*;q=0.9, */*;q=0.8")
	req.Header.Set("User-Agent", userAgent)
	return req, nil
}

func classifyTransportError(ctx context.Context, err error) FetchReason {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ReasonNetwork
}
