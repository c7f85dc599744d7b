package acs

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentYears bounds how many years FetchYears requests at once.
const maxConcurrentYears = 4

// FetchYears runs q for every year concurrently and returns the tables in the
// order of years. The first failure cancels the remaining requests.
func (c *Client) FetchYears(ctx context.Context, q Query, years []int) ([]*Table, error) {
	seen := make(map[int]bool, len(years))
	for _, y := range years {
		if seen[y] {
			return nil, fmt.Errorf("acs: year %d requested twice", y)
		}
		seen[y] = true
	}

	tables := make([]*Table, len(years))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentYears)

	for i, y := range years {
		g.Go(func() error {
			yq := q
			yq.Year = y
			t, err := c.Fetch(ctx, yq)
			if err != nil {
				return fmt.Errorf("year %d: %w", y, err)
			}
			tables[i] = t
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
