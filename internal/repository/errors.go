package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrEditLimitReached indicates a guarded field update was refused
	// because the field's edit counter already reached its cap.
	ErrEditLimitReached = errors.New("repository: edit limit reached")
	// ErrDuplicate indicates an insert violated a unique constraint.
	ErrDuplicate = errors.New("repository: duplicate record")
)
