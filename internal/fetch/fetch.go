// Package fetch performs the HTTP GETs behind every extractor.
//
// A Client sends one request per call, blocks until the response arrives or the
// context ends, and turns any non-200 status into a *table.FetchError. There is
// no retry: a failed fetch aborts the extraction that issued it.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/pfrederiksen/state-econ/internal/logger"
	"github.com/pfrederiksen/state-econ/internal/table"
)

const (
	UserAgent = "state-econ/1.0 (github.com/pfrederiksen/state-econ)"
	Timeout   = 30 * time.Second
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// RequestsPerSecond limits outgoing requests across all callers of the
	// client. Zero disables limiting.
	RequestsPerSecond float64
	Logger            *logger.Logger
	Metrics           *logger.Metrics
}

// Client fetches pages and API documents.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	log     *logger.Logger
	metrics *logger.Metrics
}

// New creates a Client from opts.
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = Timeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = UserAgent
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = logger.DefaultMetrics()
	}

	hc := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent)

	c := &Client{
		http:    hc,
		log:     opts.Logger.With("fetch"),
		metrics: opts.Metrics,
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c
}

// Get fetches rawURL with the given query parameters and returns the body.
// Query values are never echoed into errors or logs since they may carry an API key.
func (c *Client) Get(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	c.metrics.IncrCounter("fetch.requests")
	start := time.Now()

	req := c.http.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	resp, err := req.Get(rawURL)
	c.metrics.RecordTiming("fetch.duration", time.Since(start))
	if err != nil {
		c.metrics.IncrCounter("fetch.errors")
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}

	c.log.Debug("fetched", logger.Fields{
		"url":      rawURL,
		"status":   resp.StatusCode(),
		"bytes":    len(resp.Body()),
		"duration": resp.Time().String(),
	})

	if resp.StatusCode() != http.StatusOK {
		c.metrics.IncrCounter("fetch.errors")
		return nil, &table.FetchError{URL: rawURL, StatusCode: resp.StatusCode()}
	}

	return resp.Body(), nil
}

// Document fetches rawURL and parses it as HTML.
func (c *Client) Document(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := c.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, table.NewParseError("document", fmt.Errorf("parsing HTML from %s: %w", rawURL, err))
	}
	return doc, nil
}

// JSON fetches rawURL and decodes the body into out.
func (c *Client) JSON(ctx context.Context, rawURL string, query url.Values, out any) error {
	body, err := c.Get(ctx, rawURL, query)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return table.NewParseError("json", fmt.Errorf("decoding response from %s: %w", rawURL, err))
	}
	return nil
}
