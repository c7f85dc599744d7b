package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pfrederiksen/state-econ/internal/dataset"
	"github.com/pfrederiksen/state-econ/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatCSV  OutputFormat = "csv"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'csv')", s)
	}
}

// WriteDataset writes d in the specified format
func WriteDataset(w io.Writer, d *dataset.Dataset, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, d)
	case FormatCSV:
		return storage.WriteCSV(w, d)
	case FormatText:
		return writeTable(w, d)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// DiffReport is the --diff output
type DiffReport struct {
	Dataset     string              `json:"dataset"`
	Source      string              `json:"source"`
	PreviousRun string              `json:"previous_run,omitempty"`
	Diff        *dataset.DiffResult `json:"diff"`
}

// WriteDiff writes a diff report. CSV has no diff representation.
func WriteDiff(w io.Writer, report *DiffReport, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatText:
		return writeDiffText(w, report)
	default:
		return fmt.Errorf("format %s does not support --diff", format)
	}
}

// writeJSON outputs v as indented JSON
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeTable renders d as a bordered table
func writeTable(w io.Writer, d *dataset.Dataset) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(d.Name)

	header := make(table.Row, len(d.Columns))
	for i, c := range d.Columns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, r := range d.Rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		t.AppendRow(row)
	}

	t.AppendFooter(table.Row{fmt.Sprintf("%d rows", len(d.Rows))})
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	t.Render()
	return nil
}

// writeDiffText outputs the diff as human-readable text
func writeDiffText(w io.Writer, report *DiffReport) error {
	diff := report.Diff
	if diff.Empty() {
		fmt.Fprintf(w, "No changes in %s.\n", report.Dataset)
		return nil
	}

	if diff.ColumnsChanged {
		fmt.Fprintf(w, "Columns of %s changed; every row is reported as added.\n", report.Dataset)
	}
	for _, row := range diff.Added {
		fmt.Fprintf(w, "ADDED: %s\n", strings.Join(row, " | "))
	}
	for _, row := range diff.Removed {
		fmt.Fprintf(w, "REMOVED: %s\n", strings.Join(row, " | "))
	}
	for _, c := range diff.Changed {
		fmt.Fprintf(w, "CHANGED (%s): %s %q -> %q\n", c.Key, c.Column, c.OldValue, c.NewValue)
	}

	fmt.Fprintf(w, "\nTotal: %d added, %d removed, %d changed\n", len(diff.Added), len(diff.Removed), len(diff.Changed))
	return nil
}
