package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pfrederiksen/state-econ/internal/dataset"
	"github.com/pfrederiksen/state-econ/internal/scraper"
)

// CodedObservation is a FRED observation joined to the state's codes.
type CodedObservation struct {
	StateName string  `json:"state_name" csv:"State Name"`
	FIPS      string  `json:"fips" csv:"State Code (FIPS)"`
	USPS      string  `json:"usps" csv:"State Code (USPS)"`
	Year      int     `json:"year" csv:"Year"`
	Value     float64 `json:"value" csv:"Value"`
}

// CodedSeries is a FRED series whose rows carry FIPS and USPS codes.
type CodedSeries struct {
	Variable     string             `json:"variable"`
	Unit         string             `json:"unit"`
	Source       string             `json:"source"`
	Observations []CodedObservation `json:"observations"`
	valueColumn  string
}

// Columns returns State Name, both codes, Year and the value column.
func (s *CodedSeries) Columns() []string {
	return []string{scraper.ColumnStateName, scraper.ColumnFIPS, scraper.ColumnUSPS, scraper.ColumnYear, s.valueColumn}
}

// Dataset renders the joined series keyed by FIPS code and year. Its name
// carries a "_coded" suffix since the columns differ from the plain series.
func (s *CodedSeries) Dataset() *dataset.Dataset {
	d := dataset.New(scraper.FREDDatasetName(s.Variable)+"_coded", s.Source, s.Columns(), scraper.ColumnFIPS, scraper.ColumnYear)
	for _, o := range s.Observations {
		d.Append(o.StateName, o.FIPS, o.USPS, strconv.Itoa(o.Year), dataset.FormatFloat(o.Value))
	}
	d.Records = s.Observations
	return d
}

// AttachStateCodes joins series to codes by state name. Names are compared
// after folding case, accents and whitespace. Every observation must match;
// the error lists the names that did not.
func AttachStateCodes(series *scraper.FREDSeries, codes scraper.StateCodes) (*CodedSeries, error) {
	byName := make(map[string]scraper.StateCode, len(codes))
	for _, c := range codes {
		byName[FoldName(c.Name)] = c
	}

	out := &CodedSeries{
		Variable:     series.Variable,
		Unit:         series.Unit,
		Source:       series.Source,
		Observations: make([]CodedObservation, 0, len(series.Observations)),
		valueColumn:  series.ValueColumn(),
	}

	missing := make(map[string]bool)
	for _, o := range series.Observations {
		c, ok := byName[FoldName(o.StateName)]
		if !ok {
			missing[o.StateName] = true
			continue
		}
		out.Observations = append(out.Observations, CodedObservation{
			StateName: o.StateName,
			FIPS:      c.FIPS,
			USPS:      c.USPS,
			Year:      o.Year,
			Value:     o.Value,
		})
	}

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for n := range missing {
			names = append(names, n)
		}
		sort.Strings(names)
		return nil, fmt.Errorf("normalize: no state code for %s", strings.Join(names, ", "))
	}
	return out, nil
}

// FoldName reduces a state name to a join key: accents removed, lower case,
// runs of whitespace collapsed.
func FoldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}
