package storage

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"github.com/pfrederiksen/state-econ/internal/dataset"
)

// WriteCSV writes d with a header of d.Columns. Typed records are encoded
// field by field in declaration order; datasets without records fall back
// to their string rows.
func WriteCSV(w io.Writer, d *dataset.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(d.Columns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	if d.Records != nil {
		enc := csvutil.NewEncoder(cw)
		enc.AutoHeader = false
		enc.Register(func(f float64) ([]byte, error) {
			return []byte(dataset.FormatFloat(f)), nil
		})
		if err := enc.Encode(d.Records); err != nil {
			return fmt.Errorf("encoding %s records: %w", d.Name, err)
		}
	} else {
		if err := cw.WriteAll(d.Rows); err != nil {
			return fmt.Errorf("writing %s rows: %w", d.Name, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing CSV: %w", err)
	}
	return nil
}
