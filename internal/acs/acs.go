// Package acs queries the Census American Community Survey 1-year API.
//
// A Fetch issues two GETs: the data query for a set of variable codes, and the
// year's variables.json used to turn codes into readable column names. The
// first row of the data response is its header and never appears in Rows.
package acs

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pfrederiksen/state-econ/internal/config"
	"github.com/pfrederiksen/state-econ/internal/dataset"
	"github.com/pfrederiksen/state-econ/internal/fetch"
	"github.com/pfrederiksen/state-econ/internal/logger"
	"github.com/pfrederiksen/state-econ/internal/table"
)

// Variable codes requested by default.
const (
	MedianHouseholdIncome = "B19013_001E"
	PerCapitaIncome       = "B19301_001E"
	Unemployed            = "B23025_005E"
	CivilianLaborForce    = "B23025_003E"
	GiniIndex             = "B19083_001E"
	TotalPopulation       = "B01003_001E"
	MedianAge             = "B01002_001E"
	ForeignBorn           = "B05002_013E"
	MedianHomeValue       = "B25077_001E"
)

const (
	// CodeState is the geography column the API appends for a state query.
	CodeState = "state"
	// ColumnYear holds the query year on every row.
	ColumnYear = "Year"
)

// DefaultVariables is the economic and demographic profile requested when a
// Query names no variables. Order matters to positional consumers.
var DefaultVariables = []string{
	MedianHouseholdIncome,
	PerCapitaIncome,
	Unemployed,
	CivilianLaborForce,
	GiniIndex,
	TotalPopulation,
	MedianAge,
	ForeignBorn,
	MedianHomeValue,
}

// Query selects one year of ACS estimates.
type Query struct {
	Year      int
	Variables []string
	// State is a two-digit FIPS code. Empty selects every state.
	State string
}

func (q Query) variables() []string {
	if len(q.Variables) == 0 {
		return DefaultVariables
	}
	return q.Variables
}

func (q Query) geography() string {
	if q.State == "" {
		return "state:*"
	}
	return "state:" + q.State
}

// Table is one year of ACS rows. Codes and Columns are parallel: Codes holds
// the API's header (plus Year), Columns the resolved names.
type Table struct {
	Year    int        `json:"year"`
	Source  string     `json:"source"`
	Codes   []string   `json:"codes"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// CodeIndex returns the position of the column with the given variable code, or -1.
func (t *Table) CodeIndex(code string) int {
	for i, c := range t.Codes {
		if c == code {
			return i
		}
	}
	return -1
}

// Dataset renders the table keyed by state and year.
func (t *Table) Dataset() *dataset.Dataset {
	var keys []string
	if i := t.CodeIndex(CodeState); i >= 0 {
		keys = append(keys, t.Columns[i])
	}
	keys = append(keys, ColumnYear)

	d := dataset.New("acs", t.Source, t.Columns, keys...)
	d.Rows = append(d.Rows, t.Rows...)
	return d
}

// Client fetches ACS tables
type Client struct {
	fetch   *fetch.Client
	apiKey  string
	baseURL string
	cache   *metadataCache
	log     *logger.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithBaseURL points the client at another API root (e.g. a test server).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithLogger sets the logger used for request summaries.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l.With("acs") }
}

// NewClient creates an ACS client. apiKey may be empty; the key parameter is
// then left off the query.
func NewClient(f *fetch.Client, apiKey string, opts ...Option) *Client {
	c := &Client{
		fetch:   f,
		apiKey:  apiKey,
		baseURL: config.DefaultCensusBaseURL,
		log:     logger.Default().With("acs"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) datasetURL(year int) string {
	return fmt.Sprintf("%s/%d/acs/acs1", c.baseURL, year)
}

// Fetch queries one year of estimates and names the columns from the year's
// variable metadata.
func (c *Client) Fetch(ctx context.Context, q Query) (*Table, error) {
	if q.Year <= 0 {
		return nil, fmt.Errorf("acs: invalid year %d", q.Year)
	}

	params := url.Values{}
	params.Set("get", strings.Join(q.variables(), ","))
	params.Set("for", q.geography())
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	source := c.datasetURL(q.Year)
	var raw [][]any
	if err := c.fetch.JSON(ctx, source, params, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, table.NewParseError("response", fmt.Errorf("%s returned no header row", source))
	}

	codes := cells(raw[0])
	rows := make([][]string, 0, len(raw)-1)
	for i, r := range raw[1:] {
		if len(r) != len(codes) {
			return nil, table.NewParseError("row", fmt.Errorf("row %d has %d cells, want %d", i, len(r), len(codes)))
		}
		rows = append(rows, append(cells(r), strconv.Itoa(q.Year)))
	}

	meta, err := c.Metadata(ctx, q.Year)
	if err != nil {
		return nil, err
	}

	t := &Table{
		Year:    q.Year,
		Source:  source,
		Codes:   append(codes, ColumnYear),
		Columns: append(meta.Names(codes), ColumnYear),
		Rows:    rows,
	}

	c.log.Info("fetched ACS table", logger.Fields{
		"year":      q.Year,
		"geography": q.geography(),
		"rows":      len(t.Rows),
	})
	return t, nil
}

// cells converts one decoded JSON row to strings. The API sends numbers as
// strings, but nulls and bare numbers do occur.
func cells(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch v := v.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = v
		case float64:
			out[i] = dataset.FormatFloat(v)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}
