// Package normalize maps raw extractor output onto fixed, named schemas.
package normalize

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/pfrederiksen/state-econ/internal/acs"
	"github.com/pfrederiksen/state-econ/internal/dataset"
	"github.com/pfrederiksen/state-econ/internal/table"
)

// Canonical profile column names, in output order.
const (
	ColumnMedianHouseholdIncome = "Median Household Income"
	ColumnPerCapitaIncome       = "Per Capita Income"
	ColumnGiniIndex             = "Gini Index of Income Inequality"
	ColumnTotalPopulation       = "Total Population"
	ColumnMedianAge             = "Median Age"
	ColumnMedianHomeValue       = "Median Home Value"
	ColumnStateFIPS             = "State Code (FIPS)"
	ColumnYear                  = "Year"
	ColumnUnemploymentRate      = "Unemployment Rate"
	ColumnPercentForeigners     = "Percent Foreigners"
)

// ProfileColumns is the normalized ACS schema.
var ProfileColumns = []string{
	ColumnMedianHouseholdIncome,
	ColumnPerCapitaIncome,
	ColumnGiniIndex,
	ColumnTotalPopulation,
	ColumnMedianAge,
	ColumnMedianHomeValue,
	ColumnStateFIPS,
	ColumnYear,
	ColumnUnemploymentRate,
	ColumnPercentForeigners,
}

// acsInputCodes is the layout ACS expects: the default variables, then the
// geography and year columns the fetcher adds.
var acsInputCodes = append(append([]string(nil), acs.DefaultVariables...), acs.CodeState, acs.ColumnYear)

var errZeroPopulation = errors.New("total population is zero")

// StateProfile is one state's economic and demographic profile for a year.
type StateProfile struct {
	MedianHouseholdIncome float64 `json:"median_household_income" csv:"Median Household Income"`
	PerCapitaIncome       float64 `json:"per_capita_income" csv:"Per Capita Income"`
	GiniIndex             float64 `json:"gini_index" csv:"Gini Index of Income Inequality"`
	TotalPopulation       float64 `json:"total_population" csv:"Total Population"`
	MedianAge             float64 `json:"median_age" csv:"Median Age"`
	MedianHomeValue       float64 `json:"median_home_value" csv:"Median Home Value"`
	StateFIPS             string  `json:"state_fips" csv:"State Code (FIPS)"`
	Year                  int     `json:"year" csv:"Year"`
	UnemploymentRate      float64 `json:"unemployment_rate" csv:"Unemployment Rate"`
	PercentForeigners     float64 `json:"percent_foreigners" csv:"Percent Foreigners"`
}

// Row renders the profile in ProfileColumns order.
func (p StateProfile) Row() []string {
	return []string{
		dataset.FormatFloat(p.MedianHouseholdIncome),
		dataset.FormatFloat(p.PerCapitaIncome),
		dataset.FormatFloat(p.GiniIndex),
		dataset.FormatFloat(p.TotalPopulation),
		dataset.FormatFloat(p.MedianAge),
		dataset.FormatFloat(p.MedianHomeValue),
		p.StateFIPS,
		strconv.Itoa(p.Year),
		dataset.FormatFloat(p.UnemploymentRate),
		dataset.FormatFloat(p.PercentForeigners),
	}
}

// ProfileDataset renders profiles as a table keyed by FIPS code and year.
func ProfileDataset(profiles []StateProfile, source string) *dataset.Dataset {
	d := dataset.New("acs-profile", source, ProfileColumns, ColumnStateFIPS, ColumnYear)
	for _, p := range profiles {
		d.Append(p.Row()...)
	}
	d.Records = profiles
	return d
}

// ACS converts a table fetched with the default variables into profiles.
//
// Columns are located by variable code. A table whose codes are unknown is
// read positionally in the default variable order. Unemployment and
// foreign-born counts become shares of total population and the count
// columns are dropped.
func ACS(t *acs.Table) ([]StateProfile, error) {
	if len(t.Columns) != len(acsInputCodes) {
		return nil, fmt.Errorf("normalize: ACS table has %d columns, want %d", len(t.Columns), len(acsInputCodes))
	}

	idx, err := inputIndex(t)
	if err != nil {
		return nil, err
	}

	profiles := make([]StateProfile, 0, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) != len(acsInputCodes) {
			return nil, fmt.Errorf("normalize: row %d has %d cells, want %d", i, len(row), len(acsInputCodes))
		}
		p, err := profile(row, idx)
		if err != nil {
			return nil, fmt.Errorf("normalize: row %d: %w", i, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// inputIndex maps each code in acsInputCodes to its column in t.
func inputIndex(t *acs.Table) (map[string]int, error) {
	idx := make(map[string]int, len(acsInputCodes))
	if len(t.Codes) == 0 {
		for i, code := range acsInputCodes {
			idx[code] = i
		}
		return idx, nil
	}

	for _, code := range acsInputCodes {
		i := t.CodeIndex(code)
		if i < 0 {
			return nil, fmt.Errorf("normalize: ACS table has no %s column", code)
		}
		idx[code] = i
	}
	return idx, nil
}

func profile(row []string, idx map[string]int) (StateProfile, error) {
	var (
		p   StateProfile
		err error
	)

	num := func(code, column string) float64 {
		if err != nil {
			return 0
		}
		var v float64
		v, err = table.ParseCell(column, row[idx[code]])
		return v
	}

	p.MedianHouseholdIncome = num(acs.MedianHouseholdIncome, ColumnMedianHouseholdIncome)
	p.PerCapitaIncome = num(acs.PerCapitaIncome, ColumnPerCapitaIncome)
	unemployed := num(acs.Unemployed, "Unemployed Population")
	num(acs.CivilianLaborForce, "Employed Population")
	p.GiniIndex = num(acs.GiniIndex, ColumnGiniIndex)
	p.TotalPopulation = num(acs.TotalPopulation, ColumnTotalPopulation)
	p.MedianAge = num(acs.MedianAge, ColumnMedianAge)
	foreign := num(acs.ForeignBorn, "Foreigner Population")
	p.MedianHomeValue = num(acs.MedianHomeValue, ColumnMedianHomeValue)
	if err != nil {
		return StateProfile{}, err
	}

	p.StateFIPS = row[idx[acs.CodeState]]
	yearCell := row[idx[acs.ColumnYear]]
	if p.Year, err = strconv.Atoi(yearCell); err != nil {
		return StateProfile{}, &table.ConversionError{Column: ColumnYear, Value: yearCell, Err: err}
	}

	if p.TotalPopulation == 0 {
		return StateProfile{}, &table.ConversionError{
			Column: ColumnTotalPopulation,
			Value:  row[idx[acs.TotalPopulation]],
			Err:    errZeroPopulation,
		}
	}
	p.UnemploymentRate = unemployed / p.TotalPopulation
	p.PercentForeigners = foreign / p.TotalPopulation
	return p, nil
}
