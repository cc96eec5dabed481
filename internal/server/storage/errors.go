package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this username already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrNotFound indicates that a list, task or label was not found
	ErrNotFound = errors.New("entity not found")

	// ErrActionNotApplied indicates that an action id has no recorded result
	ErrActionNotApplied = errors.New("action not applied")

	// ErrMappingNotFound indicates that no external entity mapping exists
	ErrMappingNotFound = errors.New("external mapping not found")

	// ErrSyncInProgress indicates that another sync pass holds the state row
	ErrSyncInProgress = errors.New("already in progress")

	// ErrSyncTakenOver indicates that the pass outlived its lease and another
	// pass now holds the state row
	ErrSyncTakenOver = errors.New("sync state taken over by another pass")

	// ErrConflictNotFound indicates that a sync conflict was not found
	ErrConflictNotFound = errors.New("sync conflict not found")

	// ErrCredentialsNotFound indicates that the user has not linked the provider
	ErrCredentialsNotFound = errors.New("provider credentials not found")
)
