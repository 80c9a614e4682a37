package domain

import "errors"

// Sentinel errors for library operations
var (
	// ErrNotFound indicates the requested asset does not exist in the library
	ErrNotFound = errors.New("asset not found")

	// ErrUnavailable indicates the library cannot be read yet (not authorized or not mounted)
	ErrUnavailable = errors.New("photo library is unavailable")

	// ErrClosed indicates the library has been closed
	ErrClosed = errors.New("photo library is closed")
)
