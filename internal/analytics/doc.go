// Package analytics derives the aggregated views of the dashboard from a
// filtered dataset. Every function is pure and deterministic: the same
// dataset and parameters always produce the same rows in the same order.
package analytics
