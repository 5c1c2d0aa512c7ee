package engine

import "errors"

// Errors returned by document operations.
var (
	// ErrDocumentClosed indicates the last view closed and the document was disposed.
	ErrDocumentClosed = errors.New("document is closed")

	// ErrViewNotFound indicates an unknown or already closed view.
	ErrViewNotFound = errors.New("view not found")

	// ErrColumnOutOfRange indicates a column the operation cannot use.
	ErrColumnOutOfRange = errors.New("column out of range")

	// ErrOffsetOutOfRange indicates an offset is outside the document text.
	ErrOffsetOutOfRange = errors.New("offset out of range")
)
