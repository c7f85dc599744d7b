package scraper

import (
	"context"

	"github.com/pfrederiksen/state-econ/internal/config"
	"github.com/pfrederiksen/state-econ/internal/fetch"
)

// Scraper fetches and parses the supported HTML pages
type Scraper struct {
	client        *fetch.Client
	stateCodesURL string
	airportsURL   string
}

// Option customizes a Scraper
type Option func(*Scraper)

// WithStateCodesURL overrides the Census ANSI code list page.
func WithStateCodesURL(u string) Option {
	return func(s *Scraper) { s.stateCodesURL = u }
}

// WithAirportsURL overrides the BTS airport information page.
func WithAirportsURL(u string) Option {
	return func(s *Scraper) { s.airportsURL = u }
}

// New creates a new Scraper instance
func New(client *fetch.Client, opts ...Option) *Scraper {
	s := &Scraper{
		client:        client,
		stateCodesURL: config.DefaultStateCodesURL,
		airportsURL:   config.DefaultAirportsURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchFRED fetches a FRED release table and reshapes it to one observation per
// state per year. variable labels the value column.
func (s *Scraper) FetchFRED(ctx context.Context, url, variable string) (*FREDSeries, error) {
	doc, err := s.client.Document(ctx, url)
	if err != nil {
		return nil, err
	}
	series, err := parseFRED(doc.Selection, variable)
	if err != nil {
		return nil, err
	}
	series.Source = url
	return series, nil
}

// FetchStateCodes fetches the Census ANSI code list for states.
func (s *Scraper) FetchStateCodes(ctx context.Context) (StateCodes, error) {
	doc, err := s.client.Document(ctx, s.stateCodesURL)
	if err != nil {
		return nil, err
	}
	return parseStateCodes(doc.Selection)
}

// FetchAirports fetches the BTS airport information page.
func (s *Scraper) FetchAirports(ctx context.Context) (*Airports, error) {
	doc, err := s.client.Document(ctx, s.airportsURL)
	if err != nil {
		return nil, err
	}
	airports, err := parseAirports(doc.Selection)
	if err != nil {
		return nil, err
	}
	airports.Source = s.airportsURL
	return airports, nil
}

// StateCodesURL returns the page FetchStateCodes reads.
func (s *Scraper) StateCodesURL() string {
	return s.stateCodesURL
}

// AirportsURL returns the page FetchAirports reads.
func (s *Scraper) AirportsURL() string {
	return s.airportsURL
}
