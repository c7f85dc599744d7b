// Package dataset holds extracted tables in a uniform shape and compares them across runs.
//
// Every extractor renders its result into a Dataset: a name, the source URL, ordered
// columns and string rows, plus the typed records it was built from. A Snapshot is the
// persisted form of a Dataset; Diff reports which rows appeared, disappeared or changed
// value since the previous snapshot.
package dataset
