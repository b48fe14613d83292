package services

import "errors"

var (
	// ErrDatasetNotLoaded is reported by readiness before the first load.
	ErrDatasetNotLoaded = errors.New("dataset not loaded")

	// ErrInvalidInput wraps malformed client payloads.
	ErrInvalidInput = errors.New("invalid input")
)
