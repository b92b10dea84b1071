package domain

import "errors"

var (
	// ErrNotFound signals that a record does not exist or, for questions,
	// is not yet published. Callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
)
