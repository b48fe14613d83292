// Package filter owns the dashboard filter state: the year range, the
// selected platforms and genres, and the peak year focus.
//
// State is a plain value. Controller operations take a State and return a
// new one; nothing is mutated in place, so a session can keep the previous
// state until the new one is accepted. Apply derives the filtered dataset
// from the base dataset and a State.
package filter
