package scraper

import (
	"fmt"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/state-econ/internal/dataset"
	"github.com/pfrederiksen/state-econ/internal/table"
)

// FREDLayout reads a FRED release table. The second <thead> row holds
// ['', 'Name', '<year>', 'PrecedingPeriod', 'Year Agofrom Period']: the checkbox
// column and the year-ago change column are dropped, as is the last value cell.
var FREDLayout = table.Layout{
	Selector:   "table",
	HeaderRow:  1,
	Cell:       "td.fred-rls-elm-vl-td",
	RowLabel:   "th span.fred-rls-elm-nm",
	TrimHeader: table.Trim{Leading: 1, Trailing: 1},
	TrimCells:  table.Trim{Trailing: 1},
	Rename:     map[string]string{"Name": ColumnStateName},
}

const (
	ColumnStateName = "State Name"
	ColumnYear      = "Year"

	fredUnitSelector = "thead th#table-unit-heading"
)

// FREDObservation is one state's value for one year
type FREDObservation struct {
	StateName string  `json:"state_name" csv:"State Name"`
	Year      int     `json:"year" csv:"Year"`
	Value     float64 `json:"value" csv:"Value"`
}

// FREDSeries is a FRED release table in long form
type FREDSeries struct {
	Variable     string            `json:"variable"`
	Unit         string            `json:"unit"`
	Source       string            `json:"source"`
	Observations []FREDObservation `json:"observations"`
}

// ValueColumn is the label of the value column: "<variable> [<unit>]".
func (s *FREDSeries) ValueColumn() string {
	return fmt.Sprintf("%s [%s]", s.Variable, s.Unit)
}

// Columns returns the long-form columns: State Name, Year and the value column.
func (s *FREDSeries) Columns() []string {
	return []string{ColumnStateName, ColumnYear, s.ValueColumn()}
}

// FREDDatasetName names the dataset of a variable's series, e.g.
// "fred_unemployment_rate". Snapshots and SQLite tables are keyed by it.
func FREDDatasetName(variable string) string {
	if slug := dataset.Slug(variable); slug != "" {
		return "fred_" + slug
	}
	return "fred"
}

// Dataset renders the series as a table keyed by state and year.
func (s *FREDSeries) Dataset() *dataset.Dataset {
	d := dataset.New(FREDDatasetName(s.Variable), s.Source, s.Columns(), ColumnStateName, ColumnYear)
	for _, o := range s.Observations {
		d.Append(o.StateName, strconv.Itoa(o.Year), dataset.FormatFloat(o.Value))
	}
	d.Records = s.Observations
	return d
}

// parseFRED extracts the release table and reshapes it from wide (current and
// preceding period columns) to long: every current-year row, then every
// preceding-year row.
func parseFRED(root *goquery.Selection, variable string) (*FREDSeries, error) {
	raw, err := table.Extract(root, FREDLayout)
	if err != nil {
		return nil, err
	}

	unitSel := table.Find(root.Find(FREDLayout.Selector).First(), fredUnitSelector)
	if unitSel == nil {
		return nil, table.NewParseError("unit", fmt.Errorf("no element matches %q", fredUnitSelector))
	}
	if len(raw.Columns) != 3 {
		return nil, table.NewParseError("header", fmt.Errorf("expected 3 columns after trim, got %d: %q", len(raw.Columns), raw.Columns))
	}

	year, err := strconv.Atoi(raw.Columns[1])
	if err != nil {
		return nil, table.NewParseError("header", fmt.Errorf("current period column %q is not a year", raw.Columns[1]))
	}

	series := &FREDSeries{
		Variable:     variable,
		Unit:         table.Text(unitSel),
		Observations: make([]FREDObservation, 0, 2*len(raw.Rows)),
	}
	label := series.ValueColumn()

	for period, y := range []int{year, year - 1} {
		for _, row := range raw.Rows {
			v, err := table.ParseCell(label, row[1+period])
			if err != nil {
				return nil, fmt.Errorf("%s %d: %w", row[0], y, err)
			}
			series.Observations = append(series.Observations, FREDObservation{
				StateName: row[0],
				Year:      y,
				Value:     v,
			})
		}
	}

	return series, nil
}
