package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pfrederiksen/state-econ/internal/dataset"
)

const datasetsSchema = `
CREATE TABLE IF NOT EXISTS datasets (
	name TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	exported_at TEXT NOT NULL
)`

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := db.Exec(datasetsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating datasets table: %w", err)
	}
	return db, nil
}

// ExportSQLite replaces the table named after d with d's rows. All columns
// are TEXT, named exactly as the dataset's columns.
func ExportSQLite(ctx context.Context, db *sql.DB, d *dataset.Dataset) error {
	if err := d.Validate(); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	name := quoteIdent(d.Name)
	cols := make([]string, len(d.Columns))
	marks := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = quoteIdent(c) + " TEXT"
		marks[i] = "?"
	}

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("dropping %s: %w", d.Name, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(cols, ", "))); err != nil {
		return fmt.Errorf("creating %s: %w", d.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", name, strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(d.Columns))
	for i, row := range d.Rows {
		for j, v := range row {
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting row %d into %s: %w", i, d.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (name, source, exported_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET source = excluded.source, exported_at = excluded.exported_at`,
		d.Name, d.Source, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording %s: %w", d.Name, err)
	}

	return tx.Commit()
}

// quoteIdent quotes a column or table name for SQLite.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
