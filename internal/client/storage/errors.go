package storage

import "errors"

// Common client storage errors
var (
	// ErrAuthNotFound indicates that no authentication data exists
	ErrAuthNotFound = errors.New("authentication data not found")

	// ErrActionNotFound indicates that a queued action was not found
	ErrActionNotFound = errors.New("action not found")

	// ErrEntityNotFound indicates that a cached task/list/label was not found
	ErrEntityNotFound = errors.New("entity not found")

	// ErrLockHeld indicates that the drain lease belongs to another live holder
	ErrLockHeld = errors.New("lock is held by another holder")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
