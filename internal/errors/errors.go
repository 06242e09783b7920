package errors

import "errors"

// Common errors used throughout the application
var (
	// Store errors
	ErrNoteNotFound     = errors.New("note not found")
	ErrStoreUnavailable = errors.New("note store unavailable")
	ErrIndexUnavailable = errors.New("text search index unavailable")

	// Validation errors
	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrEmptyContent      = errors.New("body cannot be empty")
	ErrTitleTooLong      = errors.New("title exceeds maximum length")
	ErrBodyTooLong       = errors.New("body exceeds maximum length")
	ErrInvalidDimensions = errors.New("invalid vector dimensions")
	ErrInvalidNoteID     = errors.New("invalid note ID")
	ErrInvalidPage       = errors.New("page must be at least 1")
	ErrInvalidLimit      = errors.New("limit out of range")
	ErrEmptyQuery        = errors.New("query cannot be empty")

	// Configuration errors
	ErrUnknownConfigKey = errors.New("unknown configuration key")
	ErrInvalidBoolean   = errors.New("invalid boolean value")
	ErrInvalidNumber    = errors.New("invalid number")

	// Embedding errors
	ErrEmbedderUnavailable  = errors.New("embedding provider unavailable")
	ErrDimensionMismatch    = errors.New("embedding dimension mismatch")
	ErrUnknownEmbedProvider = errors.New("unknown embedding provider")
)
