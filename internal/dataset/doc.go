// Package dataset turns the remote video game sales dataset into an immutable
// domain.Dataset.
//
// The pipeline has three stages:
//
//	Source      resolves the dataset identifier to a local directory
//	            (KaggleSource downloads and caches, LocalSource reads in place)
//	Reader      parses the fixed-name file in that directory (CSV or XLSX)
//	Normalize   renames columns to the internal schema, coerces types and
//	            drops rows with missing or invalid values
//
// Loader runs the pipeline once per process and memoizes the result, failed
// or not. Failures are classified into the loader taxonomy of
// internal/errors and carry a user-facing diagnostic.
package dataset
