// Package apperr defines the sentinel errors shared across the service layer.
package apperr

import "errors"

var (
	// ErrNotFound signals that a referenced photo, face or person does not
	// exist or is outside the acting user's scope.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput signals malformed caller input (empty name, bad
	// bounding box, invalid photo ids).
	ErrInvalidInput = errors.New("invalid input")

	// ErrExtractionUnavailable signals that the embedding extractor failed
	// or produced nothing. It is absorbed by the pipeline, never surfaced
	// as an operation failure.
	ErrExtractionUnavailable = errors.New("embedding extraction unavailable")
)
