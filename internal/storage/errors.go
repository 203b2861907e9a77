package storage

import "errors"

// Common storage errors
var (
	// ErrStoreUnavailable indicates that the targeted table/bucket was
	// never provisioned. Reported distinctly from transaction failures so
	// callers can trigger provisioning instead of retrying blindly.
	ErrStoreUnavailable = errors.New("store not available")

	// ErrNotFound indicates that a mutation targeted a record that does
	// not exist. Plain lookups never return it: a missing id resolves to
	// a nil record, not an error.
	ErrNotFound = errors.New("record not found")

	// ErrStorageClosed indicates that the store was explicitly closed.
	// Operations keep returning it until Open is called again; a
	// teardown must not silently re-create the engine.
	ErrStorageClosed = errors.New("storage is closed")
)
