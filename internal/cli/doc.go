// Package cli implements the command-line interface for state-econ.
//
// The cli package provides the Cobra-based CLI with one subcommand per extractor
// (fred, acs, states, airports) and shared flags for output format (text/JSON/CSV),
// snapshot saving and diffing, and SQLite export. It coordinates the scraper, acs,
// normalize and storage packages; --diff exits with status 2 when the dataset
// changed since the last saved snapshot.
package cli
