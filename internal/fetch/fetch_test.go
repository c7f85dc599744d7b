package fetch

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/state-econ/internal/logger"
	"github.com/pfrederiksen/state-econ/internal/table"
)

func newTestClient(t *testing.T, opts Options) (*Client, *logger.Metrics) {
	t.Helper()
	if opts.Metrics == nil {
		opts.Metrics = logger.NewMetrics()
	}
	if opts.Logger == nil {
		opts.Logger = logger.New(logger.LevelError, &bytes.Buffer{})
	}
	return New(opts), opts.Metrics
}

func TestGet(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    bool
	}{
		{"success", http.StatusOK, "hello", false},
		{"not found", http.StatusNotFound, "", true},
		{"server error", http.StatusInternalServerError, "oops", true},
		{"no content", http.StatusNoContent, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "state-econ") {
					t.Errorf("User-Agent = %q, should contain 'state-econ'", ua)
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, metrics := newTestClient(t, Options{})
			body, err := c.Get(context.Background(), server.URL, nil)

			if tt.wantErr {
				var ferr *table.FetchError
				if !errors.As(err, &ferr) {
					t.Fatalf("Get() error = %v, want *table.FetchError", err)
				}
				if ferr.StatusCode != tt.statusCode {
					t.Errorf("FetchError.StatusCode = %d, want %d", ferr.StatusCode, tt.statusCode)
				}
				if body != nil {
					t.Errorf("Get() returned body %q alongside error", body)
				}
				if metrics.Counter("fetch.errors") != 1 {
					t.Errorf("fetch.errors = %d, want 1", metrics.Counter("fetch.errors"))
				}
				return
			}

			if err != nil {
				t.Fatalf("Get() unexpected error: %v", err)
			}
			if string(body) != tt.body {
				t.Errorf("Get() body = %q, want %q", body, tt.body)
			}
			if metrics.Counter("fetch.requests") != 1 {
				t.Errorf("fetch.requests = %d, want 1", metrics.Counter("fetch.requests"))
			}
		})
	}
}

func TestGet_QueryParamsNotLeaked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("key"); got != "secret" {
			t.Errorf("key = %q, want secret", got)
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c, _ := newTestClient(t, Options{})
	_, err := c.Get(context.Background(), server.URL, url.Values{"key": {"secret"}})
	if err == nil {
		t.Fatal("Get() expected error, got nil")
	}
	if strings.Contains(err.Error(), "secret") {
		t.Errorf("error %q leaks the API key", err)
	}
}

func TestGet_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("late"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := newTestClient(t, Options{})
	if _, err := c.Get(ctx, server.URL, nil); err == nil {
		t.Error("Get() expected error for cancelled context, got nil")
	}
}

func TestGet_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	c, _ := newTestClient(t, Options{RequestsPerSecond: 20})

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.Get(context.Background(), server.URL, nil); err != nil {
			t.Fatalf("Get() error: %v", err)
		}
	}
	// burst of 1 at 20/s: the 2nd and 3rd requests wait ~50ms each
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 requests took %v, expected rate limiting to slow them down", elapsed)
	}
}

func TestDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><table><tr><th>Name</th></tr></table></body></html>`))
	}))
	defer server.Close()

	c, _ := newTestClient(t, Options{})
	doc, err := c.Document(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}
	if got := doc.Find("th").Text(); got != "Name" {
		t.Errorf("th text = %q, want Name", got)
	}
}

func TestJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"array of arrays", `[["NAME","state"],["Alabama","01"]]`, false},
		{"malformed", `[["NAME"`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c, _ := newTestClient(t, Options{})
			var out [][]string
			err := c.JSON(context.Background(), server.URL, nil, &out)

			if tt.wantErr {
				var perr *table.ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("JSON() error = %v, want *table.ParseError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("JSON() error: %v", err)
			}
			if len(out) != 2 || out[1][0] != "Alabama" {
				t.Errorf("JSON() decoded %v", out)
			}
		})
	}
}
