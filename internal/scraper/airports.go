package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/state-econ/internal/dataset"
	"github.com/pfrederiksen/state-econ/internal/table"
)

// AirportsLayout reads the BTS airport list: the first table, header in its
// first row, two columns (code and "Airport/City/State Name").
var AirportsLayout = table.Layout{
	Selector: "table",
}

const (
	ColumnAirportName = "Airport Name"
	ColumnCity        = "City"
)

// Airport is one row of the BTS airport list
type Airport struct {
	Code      string `json:"code" csv:"Code"`
	Name      string `json:"name" csv:"Airport Name"`
	City      string `json:"city" csv:"City"`
	StateUSPS string `json:"state_usps" csv:"State Code (USPS)"`
}

// Airports keeps the page's name for the code column alongside the rows
type Airports struct {
	CodeColumn string    `json:"code_column"`
	Source     string    `json:"source"`
	Airports   []Airport `json:"airports"`
}

// Columns returns the code column followed by the split name columns.
func (a *Airports) Columns() []string {
	return []string{a.CodeColumn, ColumnAirportName, ColumnCity, ColumnUSPS}
}

// Dataset renders the airports as a table keyed by airport code.
func (a *Airports) Dataset() *dataset.Dataset {
	d := dataset.New("airports", a.Source, a.Columns(), a.CodeColumn)
	for _, ap := range a.Airports {
		d.Append(ap.Code, ap.Name, ap.City, ap.StateUSPS)
	}
	d.Records = a.Airports
	return d
}

func parseAirports(root *goquery.Selection) (*Airports, error) {
	raw, err := table.Extract(root, AirportsLayout)
	if err != nil {
		return nil, err
	}
	if len(raw.Columns) != 2 {
		return nil, table.NewParseError("header", fmt.Errorf("expected 2 columns, got %d: %q", len(raw.Columns), raw.Columns))
	}

	out := &Airports{
		CodeColumn: raw.Columns[0],
		Airports:   make([]Airport, 0, len(raw.Rows)),
	}
	for _, row := range raw.Rows {
		name, city, state := splitAirportName(row[1])
		out.Airports = append(out.Airports, Airport{
			Code:      row[0],
			Name:      name,
			City:      city,
			StateUSPS: state,
		})
	}
	return out, nil
}

// splitAirportName splits "Airport, City, ST" at the first two commas.
// Anything after the second comma belongs to the state part; missing parts are empty.
func splitAirportName(s string) (airport, city, state string) {
	parts := strings.SplitN(s, ",", 3)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return parts[0], parts[1], parts[2]
}
