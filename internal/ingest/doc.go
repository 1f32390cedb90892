// Package ingest turns raw market feed text into typed records.
//
// The pipeline is leaf first: Tokenize splits CSV text into a header and
// rows, Resolve picks a value across header spelling variants, CleanFloat
// and CleanInt coerce cell text into optional numbers, and BuildWeekly /
// BuildMonthly assemble domain records. Nothing in this package performs
// I/O; fetching is handled by the feeds package.
//
// Row level defects never fail a build. A row that cannot produce a valid
// record is dropped and counted in BuildStats.
package ingest
