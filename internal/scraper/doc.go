// Package scraper extracts state-level tables from public HTML pages.
//
// Each page is described by a table.Layout (selector, header row, column trims and
// renames); the scraper fetches the page, applies the layout and converts the raw
// string table into typed records:
//
//   - FRED release tables: one value per state for the current and preceding
//     period, reshaped to one observation per state per year.
//   - Census ANSI state codes: state name, FIPS and USPS codes.
//   - BTS airport information: airport code, name, city and USPS state code.
package scraper
