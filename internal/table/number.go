package table

import (
	"errors"
	"strconv"
	"strings"
)

var errEmptyValue = errors.New("empty value")

// CleanNumber strips thousands separators and no-break spaces from a display
// string such as "1,234.5" and trims surrounding whitespace. Inner spaces are
// kept, so "12 34" stays non-numeric. Cleaning a clean string is a no-op.
func CleanNumber(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

// ParseNumber cleans s and parses it as a float64.
// Values that are still non-numeric after cleaning yield a *ConversionError.
func ParseNumber(s string) (float64, error) {
	return ParseCell("", s)
}

// ParseCell is ParseNumber with the column name recorded on failure.
func ParseCell(column, s string) (float64, error) {
	cleaned := CleanNumber(s)
	if cleaned == "" {
		return 0, &ConversionError{Column: column, Value: s, Err: errEmptyValue}
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, &ConversionError{Column: column, Value: s, Err: err}
	}
	return v, nil
}
