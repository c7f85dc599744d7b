package dataset

import (
	"crypto/sha1"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dataset is a named table ready for output or persistence.
type Dataset struct {
	Name    string     `json:"name"`
	Source  string     `json:"source"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	// Keys names the columns that identify a row across runs
	// (e.g. "State Name" and "Year").
	Keys []string `json:"keys,omitempty"`
	// Records is the typed slice the rows were rendered from, if any.
	// It feeds the CSV encoder; JSON output carries Rows only.
	Records any `json:"-"`
}

// New creates an empty dataset with the given columns
func New(name, source string, columns []string, keys ...string) *Dataset {
	return &Dataset{
		Name:    name,
		Source:  source,
		Columns: columns,
		Rows:    make([][]string, 0),
		Keys:    keys,
	}
}

// Append adds a row. Cells must follow the column order.
func (d *Dataset) Append(cells ...string) {
	d.Rows = append(d.Rows, cells)
}

// Validate checks the row width and that every key column exists.
func (d *Dataset) Validate() error {
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return fmt.Errorf("dataset %s: row %d has %d cells, want %d", d.Name, i, len(row), len(d.Columns))
		}
	}
	for _, k := range d.Keys {
		if d.columnIndex(k) < 0 {
			return fmt.Errorf("dataset %s: key column %q not found", d.Name, k)
		}
	}
	return nil
}

func (d *Dataset) columnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// RowKey returns the stable key of row built from the key columns.
// Without key columns the whole row is the key.
func (d *Dataset) RowKey(row []string) string {
	if len(d.Keys) == 0 {
		return RowID(row)
	}
	parts := make([]string, 0, len(d.Keys))
	for _, k := range d.Keys {
		if i := d.columnIndex(k); i >= 0 && i < len(row) {
			parts = append(parts, row[i])
		}
	}
	return strings.Join(parts, "|")
}

// RowID creates a deterministic ID for a row from all of its cells
func RowID(row []string) string {
	h := sha1.New()
	h.Write([]byte(strings.Join(row, "\x1f")))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// FormatFloat renders v without exponent or trailing zeros.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases s and joins its alphanumeric runs with "_":
// "Unemployment Rate" becomes "unemployment_rate".
func Slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "_"), "_")
}
