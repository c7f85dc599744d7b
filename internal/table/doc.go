// Package table extracts HTML tables into plain string tables.
//
// A Layout describes, as data, where a page keeps its table, which header row
// carries the column names, how many leading and trailing columns to discard and
// how to rename the remaining columns. Extract applies a Layout to a parsed
// document and returns a RawTable whose rows all have the header's width.
//
// The package also defines the error taxonomy shared by the extractors:
// FetchError, ParseError and ConversionError.
package table
