package acs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pfrederiksen/state-econ/internal/table"
)

// Variable describes one ACS variable code
type Variable struct {
	Label   string `json:"label"`
	Concept string `json:"concept"`
}

// Name is "<label> (<concept>)", or just the label when there is no concept.
func (v Variable) Name() string {
	if v.Concept == "" {
		return v.Label
	}
	return fmt.Sprintf("%s (%s)", v.Label, v.Concept)
}

// Metadata maps variable codes to their descriptions
type Metadata map[string]Variable

// Names resolves each code to its column name. Codes without a label, such
// as the "state" geography column, keep the code itself.
func (m Metadata) Names(codes []string) []string {
	out := make([]string, len(codes))
	for i, code := range codes {
		out[i] = code
		if v, ok := m[code]; ok && v.Label != "" {
			out[i] = v.Name()
		}
	}
	return out
}

type variablesResponse struct {
	Variables Metadata `json:"variables"`
}

// Metadata fetches variables.json for year, serving it from the cache when
// one is configured and fresh.
func (c *Client) Metadata(ctx context.Context, year int) (Metadata, error) {
	if c.cache != nil {
		if meta := c.cache.Get(year); meta != nil {
			c.log.Debug("metadata cache hit", nil)
			return meta, nil
		}
	}

	u := c.datasetURL(year) + "/variables.json"
	var resp variablesResponse
	if err := c.fetch.JSON(ctx, u, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Variables == nil {
		return nil, table.NewParseError("metadata", fmt.Errorf("%s has no variables object", u))
	}

	if c.cache != nil {
		c.cache.Set(year, resp.Variables)
	}
	return resp.Variables, nil
}

// WithMetadataCache keeps each year's metadata for ttl so repeated fetches of
// the same year issue a single metadata request.
func WithMetadataCache(ttl time.Duration) Option {
	return func(c *Client) { c.cache = newMetadataCache(ttl) }
}

// metadataCache holds variables.json per year with a TTL
type metadataCache struct {
	mu       sync.Mutex
	entries  map[int]Metadata
	cachedAt map[int]time.Time
	ttl      time.Duration
	now      func() time.Time
}

func newMetadataCache(ttl time.Duration) *metadataCache {
	return &metadataCache{
		entries:  make(map[int]Metadata),
		cachedAt: make(map[int]time.Time),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the cached metadata for year, or nil if missing or expired.
func (c *metadataCache) Get(year int) Metadata {
	c.mu.Lock()
	defer c.mu.Unlock()

	meta, ok := c.entries[year]
	if !ok {
		return nil
	}
	if c.now().Sub(c.cachedAt[year]) > c.ttl {
		delete(c.entries, year)
		delete(c.cachedAt, year)
		return nil
	}
	return meta
}

// Set stores metadata for year
func (c *metadataCache) Set(year int, meta Metadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[year] = meta
	c.cachedAt[year] = c.now()
}

// Size returns the number of cached years
func (c *metadataCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
