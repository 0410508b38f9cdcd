package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPageURL(t *testing.T) {
	c := NewClient("https://example.com/api/character/", nil, nil)
	if got := c.PageURL(3); got != "https://example.com/api/character?page=3" {
		t.Fatalf("unexpected page URL: %s", got)
	}
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient("", nil, nil)
	if !strings.HasPrefix(c.PageURL(1), DefaultBaseURL) {
		t.Fatalf("expected default base URL, got %s", c.PageURL(1))
	}
}

func TestFetch_ReturnsBodyAndContentType(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.URL.Query().Get("page") != "2" {
			t.Fatalf("unexpected page query: %s", r.URL.RawQuery)
		}
		if got := r.Header.Get("User-Agent"); got != userAgent {
			t.Fatalf("unexpected user agent: %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"info":{"pages":42},"results":[]}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.Client(), nil)
	resp, err := c.Fetch(context.Background(), c.PageURL(2))
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if resp.ContentType != "application/json" {
		t.Fatalf("unexpected content type: %s", resp.ContentType)
	}
	if !strings.Contains(string(resp.Body), `"pages":42`) {
		t.Fatalf("unexpected body: %s", string(resp.Body))
	}
}

func TestFetch_NonOKStatusIsProtocolError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"There is nothing here"}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.Client(), nil)
	_, err := c.Fetch(context.Background(), c.PageURL(99))
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Reason != ReasonProtocol || fe.Status != http.StatusNotFound {
		t.Fatalf("unexpected fetch error: %+v", fe)
	}
	if got := UserMessage(err); !strings.Contains(got, "404") {
		t.Fatalf("expected status in user message, got %q", got)
	}
}

func TestFetch_ConnectionRefusedIsNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := ts.URL
	ts.Close()

	c := NewClient(addr, nil, nil)
	_, err := c.Fetch(context.Background(), c.PageURL(1))
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Reason != ReasonNetwork {
		t.Fatalf("expected network reason, got %s", fe.Reason)
	}
}

func TestFetch_DeadlineIsTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	c := NewClient(ts.URL, ts.Client(), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Fetch(ctx, c.PageURL(1))
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Reason != ReasonTimeout {
		t.Fatalf("expected timeout reason, got %s", fe.Reason)
	}
}

func TestFetch_CancelledContext(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	c := NewClient(ts.URL, ts.Client(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Fetch(ctx, c.PageURL(1))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFetch_RejectsInvalidURL(t *testing.T) {
	c := NewClient("", nil, nil)
	_, err := c.Fetch(context.Background(), "ftp://example.com/file")
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Reason != ReasonProtocol {
		t.Fatalf("expected protocol FetchError, got %v", err)
	}
}
