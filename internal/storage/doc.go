// Package storage persists datasets locally.
//
// Snapshots are JSON files, one per dataset name (snapshot_<name>.json), under a
// data directory that defaults to ~/.local/share/state-econ/. A snapshot maps row
// IDs to rows and row keys to IDs so that the next run can be diffed against it.
//
// Datasets can also be exported: WriteCSV writes a header of the dataset's columns
// followed by its typed records, and ExportSQLite replaces a TEXT-typed table named
// after the dataset.
package storage
