package scraper

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/state-econ/internal/dataset"
	"github.com/pfrederiksen/state-econ/internal/table"
)

const (
	ColumnFIPS = "State Code (FIPS)"
	ColumnUSPS = "State Code (USPS)"
)

// StateCodesLayout reads the ANSI code list: the bordered table whose first row
// is the header (Name, FIPS State Numeric Code, Official USPS Code).
var StateCodesLayout = table.Layout{
	Selector: `table[border="1"]`,
	Columns:  []string{ColumnStateName, ColumnFIPS, ColumnUSPS},
}

// StateCode identifies a state by name, FIPS and USPS code
type StateCode struct {
	Name string `json:"name" csv:"State Name"`
	FIPS string `json:"fips" csv:"State Code (FIPS)"`
	USPS string `json:"usps" csv:"State Code (USPS)"`
}

// StateCodes is the list of states in page order
type StateCodes []StateCode

// Dataset renders the codes as a table keyed by FIPS code.
func (sc StateCodes) Dataset(source string) *dataset.Dataset {
	d := dataset.New("states", source, StateCodesLayout.Columns, ColumnFIPS)
	for _, c := range sc {
		d.Append(c.Name, c.FIPS, c.USPS)
	}
	d.Records = []StateCode(sc)
	return d
}

func parseStateCodes(root *goquery.Selection) (StateCodes, error) {
	raw, err := table.Extract(root, StateCodesLayout)
	if err != nil {
		return nil, err
	}

	codes := make(StateCodes, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		codes = append(codes, StateCode{Name: row[0], FIPS: row[1], USPS: row[2]})
	}
	return codes, nil
}
